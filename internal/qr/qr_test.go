package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNG(t *testing.T) {
	data, err := PNG("S001", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "output should be a PNG")
}

func TestPNGRequiresID(t *testing.T) {
	_, err := PNG("", DefaultSize)
	assert.Error(t, err)
}
