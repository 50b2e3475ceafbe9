package session

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaster = "master password"

func testSettings(t *testing.T) novault.Settings {
	t.Helper()
	settings, _, err := novault.Init(novault.NewMasterSecret([]byte(testMaster)),
		novault.WithLevel(1), novault.WithMemory(8), novault.WithThreads(1))
	require.NoError(t, err)
	return settings
}

type exitRecorder struct {
	codes []int
}

func (r *exitRecorder) exit(code int) {
	r.codes = append(r.codes, code)
}

func newTestCache(t *testing.T, opts ...Opt) (*Cache, *exitRecorder) {
	t.Helper()
	rec := new(exitRecorder)
	c, err := New(append([]Opt{WithExitFunc(rec.exit)}, opts...)...)
	require.NoError(t, err)
	return c, rec
}

func TestCache_BeginUnlock(t *testing.T) {
	settings := testSettings(t)
	c, rec := newTestCache(t)
	assert.False(t, c.Cached())

	master := novault.NewMasterSecret([]byte(testMaster))
	require.NoError(t, c.Begin(settings, master, []byte("1234")))
	master.Destroy()
	assert.True(t, c.Cached())
	assert.NotContains(t, string(c.screened), testMaster)

	for i := 0; i < 2; i++ {
		got, err := c.Unlock([]byte("1234"))
		require.NoError(t, err)
		assert.NoError(t, novault.ValidateCheckHash(settings, got))
		require.NoError(t, got.Use(func(secret []byte) error {
			assert.Equal(t, testMaster, string(secret))
			return nil
		}))
		got.Destroy()
	}
	assert.Empty(t, rec.codes)

	err := c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("5678"))
	assert.ErrorIs(t, err, ErrAlreadyCached)
}

func TestCache_Begin_Neg(t *testing.T) {
	settings := testSettings(t)
	c, _ := newTestCache(t)

	err := c.Begin(settings, novault.NewMasterSecret([]byte("wrong password")), []byte("1234"))
	assert.ErrorIs(t, err, novault.ErrCheckFailed)
	assert.False(t, c.Cached())

	err = c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), nil)
	assert.ErrorIs(t, err, ErrEmptySessionPassword)
	assert.False(t, c.Cached())

	_, err = c.Unlock([]byte("1234"))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCache_Mismatch(t *testing.T) {
	settings := testSettings(t)
	c, rec := newTestCache(t)
	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")))

	_, err := c.Unlock([]byte("0000"))
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.ErrorIs(t, err, ErrSessionMismatch)
	assert.Equal(t, 2, mismatch.Remaining)

	_, err = c.Unlock([]byte("0000"))
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Remaining)
	assert.Empty(t, rec.codes)

	_, err = c.Unlock([]byte("0000"))
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 0, mismatch.Remaining)
	assert.Equal(t, []int{1}, rec.codes)
	assert.False(t, c.Cached(), "cache should be cleared once attempts run out")
}

func TestCache_MatchResetsFailures(t *testing.T) {
	settings := testSettings(t)
	c, rec := newTestCache(t)
	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")))

	for i := 0; i < 5; i++ {
		_, err := c.Unlock([]byte("bad"))
		assert.ErrorIs(t, err, ErrSessionMismatch)
		assert.Equal(t, 2, c.Remaining())
		got, err := c.Unlock([]byte("1234"))
		require.NoError(t, err)
		got.Destroy()
		assert.Equal(t, DefaultMaxAttempts, c.Remaining())
	}
	assert.Empty(t, rec.codes)
}

func TestCache_TTL(t *testing.T) {
	settings := testSettings(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c, _ := newTestCache(t, WithTTL(time.Minute), WithClock(clock))
	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")))

	now = now.Add(59 * time.Second)
	got, err := c.Unlock([]byte("1234"))
	require.NoError(t, err)
	got.Destroy()

	now = now.Add(time.Second)
	_, err = c.Unlock([]byte("1234"))
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, c.Cached())
	_, err = c.Unlock([]byte("1234"))
	assert.ErrorIs(t, err, ErrNotCached)

	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")), "cache can be reused after expiry")
}

func TestCache_Close(t *testing.T) {
	settings := testSettings(t)
	c, _ := newTestCache(t)
	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")))
	c.Close()
	assert.False(t, c.Cached())
	assert.Nil(t, c.screened)
	_, err := c.Unlock([]byte("1234"))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCache_Redaction(t *testing.T) {
	settings := testSettings(t)
	c, _ := newTestCache(t)
	require.NoError(t, c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234")))
	got, err := c.Unlock([]byte("1234"))
	require.NoError(t, err)
	assert.NotContains(t, fmt.Sprintf("%v %#v", got, got), testMaster)
}

func TestNew_Neg(t *testing.T) {
	_, err := New(WithTTL(-time.Second))
	assert.Error(t, err)
	_, err = New(WithMaxAttempts(0))
	assert.Error(t, err)
	_, err = New(WithExitFunc(nil))
	assert.Error(t, err)
	_, err = New(WithClock(nil))
	assert.Error(t, err)
	_, err = New(WithEngine(nil))
	assert.Error(t, err)
	_, err = New(WithRandom(nil))
	assert.Error(t, err)
}

func TestCache_RandomFailure(t *testing.T) {
	settings := testSettings(t)
	c, _ := newTestCache(t, WithRandom(bytes.NewReader(make([]byte, 8))))
	err := c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234"))
	assert.Error(t, err)
	assert.False(t, c.Cached())
}

func TestCache_ScreenFailureClearsDigest(t *testing.T) {
	settings := testSettings(t)
	// Enough for the digest key, but not for the screen.
	c, _ := newTestCache(t, WithRandom(bytes.NewReader(make([]byte, digestKeyLen))))
	err := c.Begin(settings, novault.NewMasterSecret([]byte(testMaster)), []byte("1234"))
	assert.Error(t, err)
	assert.False(t, c.Cached())
	assert.Nil(t, c.digest)
	assert.Nil(t, c.digestKey)
	assert.Nil(t, c.screened)
}
