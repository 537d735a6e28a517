package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := NewSet(1, 2, 3)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contain(1, 2))
	assert.False(t, s.Contain(1, 4))

	c := s.Clone()
	s.Remove(1)
	assert.False(t, s.Contain(1))
	assert.True(t, c.Contain(1))
	assert.ElementsMatch(t, []int{2, 3}, s.Collect())
}
