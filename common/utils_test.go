package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float32
		want      float32
	}{
		{"below", -1, 0, 1, 0},
		{"above", 2, 0, 1, 1},
		{"inside", 0.5, 0, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
		})
	}
}

func TestNextCapacity(t *testing.T) {
	assert.Equal(t, 16, NextCapacity(0, 3, 16))
	assert.Equal(t, 64, NextCapacity(16, 33, 16))
	assert.Equal(t, 32, NextCapacity(32, 32, 16))
	assert.Equal(t, 4, NextCapacity(0, 3, 0))
}
