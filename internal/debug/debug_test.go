package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderPassesThroughReadAt(t *testing.T) {
	src := bytes.NewReader([]byte("hello world"))
	traced := Reader(src, "test")

	buf := make([]byte, 5)
	n, err := traced.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))
}
