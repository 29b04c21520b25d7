package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggleTwiceRestoresState(t *testing.T) {
	sel := NewSelection(5, 12)

	sel.Toggle(7)
	assert.True(t, sel.Contains(7))
	assert.Equal(t, []int{5, 7, 12}, sel.Sorted())

	sel.Toggle(7)
	assert.False(t, sel.Contains(7))
	assert.Equal(t, []int{5, 12}, sel.Sorted())

	// Toggling an already selected number removes it, and again re-adds it.
	sel.Toggle(5)
	assert.Equal(t, []int{12}, sel.Sorted())
	sel.Toggle(5)
	assert.Equal(t, []int{5, 12}, sel.Sorted())
}

func TestSelectionDeduplicates(t *testing.T) {
	sel := NewSelection(12, 5, 12, 5, 5)
	assert.Equal(t, 2, sel.Len())
	assert.Equal(t, []int{5, 12}, sel.Sorted())
}

func TestSelectionEmpty(t *testing.T) {
	sel := NewSelection()
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.Sorted())
	assert.False(t, sel.Contains(1))
}
