package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringList{}.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringList{"AIR 1973 SC 1461", "(1997) 6 SCC 241"}.Value()
	assert.NoError(t, err)
	assert.Equal(t, `["AIR 1973 SC 1461","(1997) 6 SCC 241"]`, v)
}

func TestStringListScan(t *testing.T) {
	var l StringList

	assert.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)

	assert.NoError(t, l.Scan("[]"))
	assert.Nil(t, l)

	assert.NoError(t, l.Scan("null"))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}

func TestIsValidCaseStatus(t *testing.T) {
	for _, s := range CaseStatuses() {
		assert.True(t, IsValidCaseStatus(s))
	}
	assert.False(t, IsValidCaseStatus(""))
	assert.False(t, IsValidCaseStatus("LANDMARK"))
	assert.False(t, IsValidCaseStatus("overruled"))
}

func TestSearchFiltersIsEmpty(t *testing.T) {
	var nilFilters *SearchFilters
	assert.True(t, nilFilters.IsEmpty())
	assert.True(t, (&SearchFilters{}).IsEmpty())
	assert.True(t, (&SearchFilters{Query: "   "}).IsEmpty())
	assert.False(t, (&SearchFilters{Year: "1997"}).IsEmpty())
}
