package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightflow/leadscout/internal/model"
)

func TestNormalizeSize_Synonyms(t *testing.T) {
	cases := map[string]string{
		"startup":    "small",
		"Start-Up":   "small",
		"SME":        "small",
		"初创企业":       "small",
		"中小企业":       "small",
		"mid-market": "medium",
		"Midsize":    "medium",
		"中型":         "medium",
		"enterprise": "large",
		"大型企业":       "large",
		"small":      "small",
		"  large  ":  "large",
		"unknown":    "unknown",
		"":           "unknown",
		"   ":        "unknown",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeSize(input), "input %q", input)
	}
}

func TestNormalizeSize_Idempotent(t *testing.T) {
	for _, tier := range []string{"small", "medium", "large", "unknown"} {
		assert.Equal(t, tier, NormalizeSize(NormalizeSize(tier)))
	}
}

func TestNormalizeSize_CustomTierPassesThrough(t *testing.T) {
	assert.Equal(t, "50-200 employees", NormalizeSize("50-200 employees"))
	assert.Equal(t, "unicorn", NormalizeSize("unicorn"))
}

func TestMatchSize_NoTargets(t *testing.T) {
	verdict, judgement := MatchSize("small", nil)
	assert.Equal(t, model.SizeMatchUnknown, verdict)
	assert.NotEmpty(t, judgement)
}

func TestMatchSize_UnknownLeadSize(t *testing.T) {
	verdict, _ := MatchSize("", []string{"small", "medium"})
	assert.Equal(t, model.SizeMatchUnknown, verdict)

	verdict, _ = MatchSize("unknown", []string{"small"})
	assert.Equal(t, model.SizeMatchUnknown, verdict)
}

func TestMatchSize_Match(t *testing.T) {
	verdict, judgement := MatchSize("startup", []string{"small", "medium"})
	assert.Equal(t, model.SizeMatchYes, verdict)
	assert.Contains(t, judgement, "small")
}

func TestMatchSize_TargetsNormalizedToo(t *testing.T) {
	verdict, _ := MatchSize("enterprise", []string{"大型企业"})
	assert.Equal(t, model.SizeMatchYes, verdict)
}

func TestMatchSize_Mismatch(t *testing.T) {
	verdict, judgement := MatchSize("large", []string{"small"})
	assert.Equal(t, model.SizeMatchNo, verdict)
	assert.Contains(t, judgement, "outside")
}

func TestMatchSize_CustomTier(t *testing.T) {
	verdict, _ := MatchSize("unicorn", []string{"unicorn"})
	assert.Equal(t, model.SizeMatchYes, verdict)
}

func TestAnnotateSizes_AnnotatesWithoutExcluding(t *testing.T) {
	leads := []model.RawLead{
		{CompanyName: "A", EstimatedSize: "startup"},
		{CompanyName: "B", EstimatedSize: "enterprise"},
		{CompanyName: "C"},
	}
	AnnotateSizes(leads, []string{"small"})

	assert.Len(t, leads, 3)
	assert.Equal(t, model.SizeMatchYes, leads[0].SizeMatch)
	assert.Equal(t, model.SizeMatchNo, leads[1].SizeMatch)
	assert.Equal(t, model.SizeMatchUnknown, leads[2].SizeMatch)
	for _, l := range leads {
		assert.NotEmpty(t, l.SizeJudgement)
	}
}
