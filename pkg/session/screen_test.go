package session

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScreen_Neg(t *testing.T) {
	_, err := newScreen(nil, 0)
	assert.Error(t, err)
	_, err = newScreen([]byte{0}, -1)
	assert.Error(t, err)
	_, err = newScreen([]byte{0}, 1)
	assert.Error(t, err)
	_, err = newScreen([]byte{0}, 2)
	assert.Error(t, err)
}

func TestScreen_RoundTrip(t *testing.T) {
	input := []byte("A test string that is longer than the key")
	key, offset, err := genKeyAndOffset(rand.Reader, 7)
	require.NoError(t, err)
	assert.Len(t, key, 7)
	assert.True(t, offset >= 0 && offset < 7)

	s, err := newScreen(key, offset)
	require.NoError(t, err)
	screened := make([]byte, len(input))
	s.apply(screened, input)
	assert.NotEqual(t, input, screened)

	out := make([]byte, len(input))
	s.apply(out, screened)
	assert.Equal(t, input, out)
}

func TestScreen_Offset(t *testing.T) {
	s, err := newScreen([]byte{1, 2, 3}, 1)
	require.NoError(t, err)
	out := make([]byte, 4)
	s.apply(out, []byte{0, 0, 0, 0})
	assert.Equal(t, []byte{2, 3, 1, 2}, out)

	s.destroy()
	assert.Nil(t, s.key)
}

func TestGenKeyAndOffset_Neg(t *testing.T) {
	_, _, err := genKeyAndOffset(rand.Reader, 0)
	assert.Error(t, err)
	_, _, err = genKeyAndOffset(bytes.NewReader(make([]byte, 3)), 4)
	assert.Error(t, err)
	_, _, err = genKeyAndOffset(bytes.NewReader(make([]byte, 6)), 4)
	assert.Error(t, err)
}
