package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortNewsByImportance_StableWithinLevel(t *testing.T) {
	items := []NewsItem{
		{Title: "low-1", Importance: ImportanceLow},
		{Title: "high-1", Importance: ImportanceHigh},
		{Title: "med-1", Importance: ImportanceMedium},
		{Title: "high-2", Importance: ImportanceHigh},
	}
	SortNewsByImportance(items)

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	assert.Equal(t, []string{"high-1", "high-2", "med-1", "low-1"}, titles)
}

func TestImportanceString(t *testing.T) {
	assert.Equal(t, "high", ImportanceHigh.String())
	assert.Equal(t, "medium", ImportanceMedium.String())
	assert.Equal(t, "low", ImportanceLow.String())
}
