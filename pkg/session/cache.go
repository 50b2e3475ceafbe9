package session

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/saylorsolutions/novault/pkg/novault"
	"golang.org/x/crypto/blake2b"
)

// DefaultMaxAttempts is the number of consecutive session password mismatches that ends the process.
const DefaultMaxAttempts = 3

const digestKeyLen = 32

var (
	ErrSessionMismatch      = errors.New("session password does not match")
	ErrSessionExpired       = errors.New("session has expired")
	ErrNotCached            = errors.New("no master secret is cached")
	ErrAlreadyCached        = errors.New("a master secret is already cached")
	ErrEmptySessionPassword = errors.New("session password is empty")
)

// MismatchError is returned by Unlock when the session password doesn't match.
type MismatchError struct {
	Remaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s, %d attempt(s) remaining", ErrSessionMismatch, e.Remaining)
}

func (e *MismatchError) Unwrap() error { return ErrSessionMismatch }

// Cache holds a validated master secret for the life of an interactive session, gated by a short session password.
// A Cache is safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	engine      *novault.Engine
	random      io.Reader
	now         func() time.Time
	exit        func(code int)
	maxAttempts int
	ttl         time.Duration

	screened  []byte
	screen    *screen
	digestKey []byte
	digest    []byte
	failures  int
	expires   time.Time
}

// Opt configures a Cache.
type Opt = func(*Cache) error

// New creates an empty Cache.
func New(opts ...Opt) (*Cache, error) {
	engine, err := novault.NewEngine()
	if err != nil {
		return nil, err
	}
	c := &Cache{
		engine:      engine,
		random:      rand.Reader,
		now:         time.Now,
		exit:        os.Exit,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithTTL clears the cached master secret once ttl has passed since Begin. A ttl of 0 means no expiry.
func WithTTL(ttl time.Duration) Opt {
	return func(c *Cache) error {
		if ttl < 0 {
			return errors.New("negative session ttl")
		}
		c.ttl = ttl
		return nil
	}
}

// WithMaxAttempts sets how many consecutive mismatches trigger the exit func.
func WithMaxAttempts(n int) Opt {
	return func(c *Cache) error {
		if n < 1 {
			return errors.New("max attempts must be at least 1")
		}
		c.maxAttempts = n
		return nil
	}
}

// WithExitFunc replaces os.Exit as the action taken when attempts run out.
func WithExitFunc(exit func(code int)) Opt {
	return func(c *Cache) error {
		if exit == nil {
			return errors.New("nil exit func")
		}
		c.exit = exit
		return nil
	}
}

// WithClock sets the time source used for the ttl.
func WithClock(now func() time.Time) Opt {
	return func(c *Cache) error {
		if now == nil {
			return errors.New("nil clock")
		}
		c.now = now
		return nil
	}
}

// WithEngine sets the Engine used to validate the master secret.
func WithEngine(engine *novault.Engine) Opt {
	return func(c *Cache) error {
		if engine == nil {
			return errors.New("nil engine")
		}
		c.engine = engine
		return nil
	}
}

// WithRandom sets the source of randomness for screening keys.
func WithRandom(r io.Reader) Opt {
	return func(c *Cache) error {
		if r == nil {
			return errors.New("nil random source")
		}
		c.random = r
		return nil
	}
}

// Begin validates master against the stored CheckHash, then caches it behind sessionPassword.
// The caller still owns master, and may Destroy it once Begin returns.
func (c *Cache) Begin(settings novault.Settings, master *novault.MasterSecret, sessionPassword []byte) error {
	if len(sessionPassword) == 0 {
		return ErrEmptySessionPassword
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	if c.screen != nil {
		return ErrAlreadyCached
	}
	if err := c.engine.ValidateCheckHash(settings, master); err != nil {
		return err
	}

	digestKey := make([]byte, digestKeyLen)
	if _, err := io.ReadFull(c.random, digestKey); err != nil {
		return fmt.Errorf("failed to generate digest key: %w", err)
	}
	digest, err := digestOf(digestKey, sessionPassword)
	if err != nil {
		wipe(digestKey)
		return err
	}
	c.digestKey = digestKey
	c.digest = digest
	err = master.Use(func(secret []byte) error {
		key, offset, err := genKeyAndOffset(c.random, len(secret))
		if err != nil {
			return err
		}
		scr, err := newScreen(key, offset)
		if err != nil {
			return err
		}
		c.screened = make([]byte, len(secret))
		scr.apply(c.screened, secret)
		c.screen = scr
		return nil
	})
	if err != nil {
		c.clearLocked()
		return err
	}
	c.failures = 0
	if c.ttl > 0 {
		c.expires = c.now().Add(c.ttl)
	}
	return nil
}

// Unlock returns a copy of the cached master secret if sessionPassword matches, and resets the failure count.
// A mismatch returns a *MismatchError, and the last allowed mismatch clears the cache and calls the exit func with code 1.
func (c *Cache) Unlock(sessionPassword []byte) (*novault.MasterSecret, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expireLocked() {
		return nil, ErrSessionExpired
	}
	if c.screen == nil {
		return nil, ErrNotCached
	}
	digest, err := digestOf(c.digestKey, sessionPassword)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(digest, c.digest) != 1 {
		c.failures++
		remaining := c.maxAttempts - c.failures
		if remaining <= 0 {
			c.clearLocked()
			c.exit(1)
			return nil, &MismatchError{Remaining: 0}
		}
		return nil, &MismatchError{Remaining: remaining}
	}
	c.failures = 0
	buf := make([]byte, len(c.screened))
	c.screen.apply(buf, c.screened)
	return novault.NewMasterSecret(buf), nil
}

// Cached reports whether a master secret is cached and not expired.
func (c *Cache) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	return c.screen != nil
}

// Remaining returns the number of mismatches allowed before the exit func is called.
func (c *Cache) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxAttempts - c.failures
}

// Close wipes the cached state. The Cache may be used again with Begin.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// expireLocked clears the cache if the ttl has passed, and reports whether it did.
func (c *Cache) expireLocked() bool {
	if c.screen == nil || c.expires.IsZero() || c.now().Before(c.expires) {
		return false
	}
	c.clearLocked()
	return true
}

func (c *Cache) clearLocked() {
	if c.screen != nil {
		c.screen.destroy()
		c.screen = nil
	}
	wipe(c.screened)
	wipe(c.digestKey)
	wipe(c.digest)
	c.screened, c.digestKey, c.digest = nil, nil, nil
	c.failures = 0
	c.expires = time.Time{}
}

func digestOf(key, sessionPassword []byte) ([]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, err
	}
	h.Write(sessionPassword)
	return h.Sum(nil), nil
}
