package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_NativeArray(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`["a", "b", " c "]`), &l))
	assert.Equal(t, StringList{"a", "b", "c"}, l)
}

func TestStringList_StringifiedArray(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`"[\"saas\", \"fintech\"]"`), &l))
	assert.Equal(t, StringList{"saas", "fintech"}, l)
}

func TestStringList_DelimitedText(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`"制造业，能源、软件, retail"`), &l))
	assert.Equal(t, StringList{"制造业", "能源", "软件", "retail"}, l)
}

func TestStringList_EmptyString(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`"  "`), &l))
	assert.Empty(t, l)
}

func TestStringList_MixedTypeArray(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`["a", 5, true]`), &l))
	assert.Contains(t, l, "a")
	assert.Contains(t, l, "5")
}

func TestCoerceStringList_Newlines(t *testing.T) {
	l := CoerceStringList("one\ntwo\nthree")
	assert.Equal(t, StringList{"one", "two", "three"}, l)
}

func TestCoerceStringList_JSONArrayText(t *testing.T) {
	l := CoerceStringList(`["x", "y"]`)
	assert.Equal(t, StringList{"x", "y"}, l)
}

func TestICP_ToleratesStringFields(t *testing.T) {
	raw := `{"target_industries": "[\"光伏\", \"储能\"]", "company_size": "small, medium", "geography": ["中国"]}`
	var icp ICP
	require.NoError(t, json.Unmarshal([]byte(raw), &icp))
	assert.Equal(t, StringList{"光伏", "储能"}, icp.TargetIndustries)
	assert.Equal(t, StringList{"small", "medium"}, icp.CompanySize)
	assert.Equal(t, StringList{"中国"}, icp.Geography)
}
