package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorEncodeDecode(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 123_000_000, time.UTC)
	token, err := Encode(After(42, ts))
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.ID)
	assert.True(t, ts.Equal(c.Time()))
	assert.False(t, c.IsZero())
}

func TestDecodeEmptyIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("%%%")
	assert.Error(t, err)

	_, err = Decode("bm90LWpzb24=") // "not-json"
	assert.Error(t, err)
}
