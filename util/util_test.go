package util

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetKeysSorted(t *testing.T) {
	keys := GetKeys(map[int]string{3: "c", 1: "a", 2: "b"})
	assert.Equal(t, []int{1, 2, 3}, keys)
}

func TestClamp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1.0, Clamp(1.5, -1.0, 1.0))
	assert.Equal(-1.0, Clamp(-3.0, -1.0, 1.0))
	assert.Equal(0.25, Clamp(0.25, -1.0, 1.0))
	assert.Equal(uint8(127), Clamp(uint8(200), 0, 127))
}

func TestChooseStaysInSlice(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	xs := []string{"I", "IV", "V"}
	for i := 0; i < 50; i++ {
		assert.Contains(t, xs, Choose(r, xs))
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, []int{4}, OrDefault(nil, []int{4}))
	assert.Equal(t, []int{3}, OrDefault([]int{3}, []int{4}))
}
