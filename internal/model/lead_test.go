package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityForScore_Boundaries(t *testing.T) {
	assert.Equal(t, PriorityCold, PriorityForScore(0))
	assert.Equal(t, PriorityCold, PriorityForScore(39))
	assert.Equal(t, PriorityWarm, PriorityForScore(40))
	assert.Equal(t, PriorityWarm, PriorityForScore(70))
	assert.Equal(t, PriorityHot, PriorityForScore(71))
	assert.Equal(t, PriorityHot, PriorityForScore(100))
}

func TestBANTAssessment_TotalAndPriority(t *testing.T) {
	b := BANTAssessment{
		Budget:    BANTDimension{Score: 20},
		Authority: BANTDimension{Score: 18},
		Need:      BANTDimension{Score: 22},
		Timing:    BANTDimension{Score: 15},
	}
	assert.Equal(t, 75, b.TotalScore())
	assert.Equal(t, PriorityHot, b.Priority())
}

func TestBANTAssessment_ZeroValue(t *testing.T) {
	var b BANTAssessment
	assert.Equal(t, 0, b.TotalScore())
	assert.Equal(t, PriorityCold, b.Priority())
}

func TestBANTAssessment_RangeInvariant(t *testing.T) {
	// Sweep the sub-score corners; total must stay in [0, 100] and the
	// priority mapping must agree with PriorityForScore everywhere.
	for _, budget := range []int{0, 12, 25} {
		for _, authority := range []int{0, 13, 25} {
			for _, need := range []int{0, 25} {
				for _, timing := range []int{0, 25} {
					b := BANTAssessment{
						Budget:    BANTDimension{Score: budget},
						Authority: BANTDimension{Score: authority},
						Need:      BANTDimension{Score: need},
						Timing:    BANTDimension{Score: timing},
					}
					total := b.TotalScore()
					assert.GreaterOrEqual(t, total, 0)
					assert.LessOrEqual(t, total, 100)
					assert.Equal(t, PriorityForScore(total), b.Priority())
				}
			}
		}
	}
}

func TestDedupKey_TrimAndFold(t *testing.T) {
	assert.Equal(t, DedupKey("Acme Co"), DedupKey("  acme co "))
	assert.Equal(t, DedupKey("ACME CO"), DedupKey("acme co"))
	assert.NotEqual(t, DedupKey("acme co"), DedupKey("acme corp"))
}

func TestDedupKey_MixedScript(t *testing.T) {
	assert.Equal(t, DedupKey("华为 Huawei"), DedupKey("华为 HUAWEI"))
}

func TestSearchTask_DedupKey(t *testing.T) {
	a := SearchTask{TaskID: "t1", QueryZH: "碳化硅 采购", QueryEN: "SiC buyer"}
	b := SearchTask{TaskID: "t2", QueryZH: " 碳化硅 采购 ", QueryEN: "SiC buyer"}
	c := SearchTask{TaskID: "t3", QueryZH: "碳化硅 采购", QueryEN: "SiC vendor"}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
