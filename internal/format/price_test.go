package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	got := Price(1299.99)
	require.NotEmpty(t, got)
	require.Contains(t, got, "€")

	zero := Price(0)
	require.NotEmpty(t, zero)
	require.Contains(t, zero, "€")
	require.NotEqual(t, got, zero)
}
