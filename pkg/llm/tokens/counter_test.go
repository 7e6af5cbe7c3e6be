package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiktokenCounter(t *testing.T) {
	c, err := NewTiktokenCounter("cl100k_base")
	require.NoError(t, err)

	assert.Equal(t, 0, c.Count(""))
	assert.Greater(t, c.Count("hello world"), 0)
	assert.Greater(t, c.Count("hello world, this is a much longer sentence"), c.Count("hello world"))
}

func TestUnknownEncoding(t *testing.T) {
	_, err := NewTiktokenCounter("no_such_encoding")
	assert.Error(t, err)
}
