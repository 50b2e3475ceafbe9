package novault

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/saylorsolutions/novault/pkg/kdf"
)

const (
	// HashLen is the length of the raw derived hash in bytes.
	HashLen = 128
	// PinLen is the number of digits in a PIN mode hash string.
	PinLen = 19

	saltRepeat  = 8
	minSaltLen  = 16
	fakeMaster  = "fake-password"
	fakePepper  = "fake-secret"
	fakeLevel   = 1
	fakeMemMiB  = 16
	fakeThreads = 1
)

var defaultEngine = &Engine{policy: DefaultLengthPolicy()}

// Engine derives site hashes and passwords.
// The zero value isn't usable, use NewEngine.
type Engine struct {
	policy LengthPolicy
}

// EngineOpt configures an Engine.
type EngineOpt = func(*Engine) error

// NewEngine creates an Engine with the DefaultLengthPolicy, unless configured otherwise.
func NewEngine(opts ...EngineOpt) (*Engine, error) {
	e := &Engine{policy: DefaultLengthPolicy()}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WithLengthPolicy sets the accepted master secret lengths.
func WithLengthPolicy(policy LengthPolicy) EngineOpt {
	return func(e *Engine) error {
		if err := policy.validate(); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// Policy returns the Engine's master secret length policy.
func (e *Engine) Policy() LengthPolicy { return e.policy }

// Derive returns the raw HashLen byte hash for site.
// The master secret length is checked before the cost parameters, and both are checked before any hashing.
func (e *Engine) Derive(settings Settings, master *MasterSecret, site Site) ([]byte, error) {
	if err := e.policy.Check(master); err != nil {
		return nil, err
	}
	var key []byte
	err := master.Use(func(secret []byte) error {
		var err error
		key, err = derive(settings, secret, site)
		return err
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// HashString returns the encoded hash for site: a PinLen digit string in PIN mode, unpadded base64url otherwise.
func (e *Engine) HashString(settings Settings, master *MasterSecret, site Site) (string, error) {
	key, err := e.Derive(settings, master, site)
	if err != nil {
		return "", err
	}
	defer wipe(key)
	return encode(key, site.Pin), nil
}

// Password renders the site's password with its format template.
// The master secret isn't checked against the stored CheckHash, use GetPassword for that.
func (e *Engine) Password(settings Settings, master *MasterSecret, site Site) (*SitePassword, error) {
	hash, err := e.HashString(settings, master, site)
	if err != nil {
		return nil, err
	}
	pass, err := Format(site.Fmt, hash)
	if err != nil {
		return nil, err
	}
	return newSitePassword(pass), nil
}

// Derive calls Engine.Derive with the default Engine.
func Derive(settings Settings, master *MasterSecret, site Site) ([]byte, error) {
	return defaultEngine.Derive(settings, master, site)
}

// HashString calls Engine.HashString with the default Engine.
func HashString(settings Settings, master *MasterSecret, site Site) (string, error) {
	return defaultEngine.HashString(settings, master, site)
}

func derive(settings Settings, secret []byte, site Site) ([]byte, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if site.Salt == "" {
		return nil, fmt.Errorf("%w: salt is empty", ErrInvalidSalt)
	}
	key, err := kdf.Key(kdf.Argon2d, []byte(settings.pepper), expandSalt(site.Salt), secret, nil, settings.params(), HashLen)
	if err != nil {
		if errors.Is(err, kdf.ErrInvalidParams) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCostParameters, err)
		}
		return nil, err
	}
	return key, nil
}

// expandSalt repeats salt so short names still meet the minimum salt length.
func expandSalt(salt string) []byte {
	s := strings.Repeat(salt, saltRepeat)
	for len(s) < minSaltLen {
		s += salt
	}
	return []byte(s)
}

func encode(key []byte, pin bool) string {
	if !pin {
		return base64.RawURLEncoding.EncodeToString(key)
	}
	digits := strconv.FormatUint(binary.LittleEndian.Uint64(key[:8]), 10)
	if len(digits) < PinLen {
		digits += strings.Repeat("0", PinLen-len(digits))
	}
	return digits[:PinLen]
}

// dryRun renders site with throwaway settings and master secret, to check its format template without real secrets.
func dryRun(site Site) error {
	settings := Settings{
		level:   fakeLevel,
		memMiB:  fakeMemMiB,
		threads: fakeThreads,
		pepper:  fakePepper,
	}
	key, err := derive(settings, []byte(fakeMaster), site)
	if err != nil {
		return err
	}
	defer wipe(key)
	_, err = Format(site.Fmt, encode(key, site.Pin))
	return err
}
