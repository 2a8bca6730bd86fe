package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgMax(t *testing.T) {
	require.Equal(t, -1, ArgMax([]int{}))
	require.Equal(t, 0, ArgMax([]int{7}))
	require.Equal(t, 2, ArgMax([]float64{1, 2, 9, 3}))
	require.Equal(t, 1, ArgMax([]int{1, 5, 5, 0}), "first maximum wins")
}
