package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", Value[string](nil))
	require.Equal(t, 4.5, Value(Ptr(4.5)))
}

func TestSet(t *testing.T) {
	dst := "old"
	require.False(t, Set(&dst, nil))
	require.Equal(t, "old", dst)
	require.True(t, Set(&dst, Ptr("new")))
	require.Equal(t, "new", dst)
}
