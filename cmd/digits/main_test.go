package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizes(t *testing.T) {
	sizes, err := parseSizes("64, 30,30 ,10")
	require.NoError(t, err)
	assert.Equal(t, []int{64, 30, 30, 10}, sizes)

	_, err = parseSizes("64,x")
	assert.Error(t, err)
}
