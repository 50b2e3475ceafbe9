package novault

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/saylorsolutions/novault/pkg/kdf"
)

const (
	DefaultLevel   uint32 = 7
	DefaultMemMiB  uint32 = 7
	DefaultThreads uint32 = 1

	maxMemMiB = math.MaxUint32 / 1024
)

// Settings are the immutable per-installation parameters that every derivation depends on.
// Use Init to create new Settings, or RestoreSettings to load persisted ones.
type Settings struct {
	level     uint32
	memMiB    uint32
	threads   uint32
	checkHash CheckHash
	pepper    Pepper
	install   string
}

// Level is the number of Argon2 passes.
func (s Settings) Level() uint32 { return s.level }

// MemMiB is the amount of memory Argon2 fills, in MiB.
func (s Settings) MemMiB() uint32 { return s.memMiB }

// Threads is the number of Argon2 lanes.
func (s Settings) Threads() uint32 { return s.threads }

// CheckHash is the stored fingerprint of the master secret. It's empty until Init computes it.
func (s Settings) CheckHash() CheckHash { return s.checkHash }

// Pepper returns the stored pepper, which is empty when the second factor is disabled.
func (s Settings) Pepper() Pepper { return s.pepper }

// HasPepper reports whether the second factor is enabled.
func (s Settings) HasPepper() bool { return s.pepper != "" }

// Install returns the installation identity mixed into every salt.
func (s Settings) Install() string { return s.install }

// SaltPolicy returns the policy used to derive site salts for these Settings.
func (s Settings) SaltPolicy() SaltPolicy { return SaltPolicy{Install: s.install} }

// Record returns the persisted shape of these Settings.
func (s Settings) Record() SettingsRecord {
	return SettingsRecord{
		Level:     s.level,
		Mem:       s.memMiB,
		Threads:   s.threads,
		CheckHash: string(s.checkHash),
		Secret:    string(s.pepper),
		Install:   s.install,
	}
}

func (s Settings) params() kdf.Params {
	return kdf.Params{
		Time:      s.level,
		MemoryKiB: s.memMiB * 1024,
		Threads:   s.threads,
		// Passwords have always been derived with Argon2 version 0x10.
		Version: kdf.Version10,
	}
}

func (s Settings) withCheckHash(ch CheckHash) Settings {
	s.checkHash = ch
	return s
}

func (s Settings) validate() error {
	if s.level < 1 {
		return fmt.Errorf("%w: level must be at least 1", ErrInvalidCostParameters)
	}
	if s.threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidCostParameters)
	}
	if s.memMiB < 1 || s.memMiB > maxMemMiB {
		return fmt.Errorf("%w: mem must be between 1 and %d MiB", ErrInvalidCostParameters, maxMemMiB)
	}
	if err := s.params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCostParameters, err)
	}
	return nil
}

// SettingsRecord is the plain persisted form of Settings.
type SettingsRecord struct {
	Level     uint32
	Mem       uint32
	Threads   uint32
	CheckHash string
	Secret    string
	Install   string
}

// RestoreSettings validates a persisted record and returns the Settings it describes.
func RestoreSettings(rec SettingsRecord) (Settings, error) {
	s := Settings{
		level:     rec.Level,
		memMiB:    rec.Mem,
		threads:   rec.Threads,
		checkHash: CheckHash(rec.CheckHash),
		pepper:    Pepper(rec.Secret),
		install:   rec.Install,
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Option configures Settings created with NewSettings or Init.
type Option = func(*settingsConfig) error

type settingsConfig struct {
	level, memMiB, threads uint32

	pepper     Pepper
	pepperSet  bool
	noPepper   bool
	install    string
	newInstall bool
	random     io.Reader
}

// NewSettings creates Settings with the given cost parameters, no pepper, and no install identity unless configured with options.
// The CheckHash is left empty.
func NewSettings(level, memMiB, threads uint32, opts ...Option) (Settings, error) {
	conf := &settingsConfig{level: level, memMiB: memMiB, threads: threads, random: rand.Reader, noPepper: true}
	if err := conf.apply(opts); err != nil {
		return Settings{}, err
	}
	return conf.settings()
}

func (c *settingsConfig) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *settingsConfig) settings() (Settings, error) {
	s := Settings{
		level:   c.level,
		memMiB:  c.memMiB,
		threads: c.threads,
		install: c.install,
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	switch {
	case c.pepperSet:
		s.pepper = c.pepper
	case !c.noPepper:
		pepper, err := GeneratePepper(c.random)
		if err != nil {
			return Settings{}, err
		}
		s.pepper = pepper
	}
	if c.newInstall {
		id, err := uuid.NewRandomFromReader(c.random)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to generate install id: %w", err)
		}
		s.install = id.String()
	}
	return s, nil
}

// WithLevel sets the number of Argon2 passes.
func WithLevel(level uint32) Option {
	return func(c *settingsConfig) error {
		c.level = level
		return nil
	}
}

// WithMemory sets the amount of memory Argon2 fills, in MiB.
func WithMemory(memMiB uint32) Option {
	return func(c *settingsConfig) error {
		c.memMiB = memMiB
		return nil
	}
}

// WithThreads sets the number of Argon2 lanes.
func WithThreads(threads uint32) Option {
	return func(c *settingsConfig) error {
		c.threads = threads
		return nil
	}
}

// WithPepper uses the given pepper instead of generating one.
func WithPepper(pepper Pepper) Option {
	return func(c *settingsConfig) error {
		if pepper == "" {
			return errors.New("empty pepper, use WithoutPepper to disable the second factor")
		}
		c.pepper = pepper
		c.pepperSet = true
		c.noPepper = false
		return nil
	}
}

// WithoutPepper disables the second factor.
func WithoutPepper() Option {
	return func(c *settingsConfig) error {
		c.pepper = ""
		c.pepperSet = false
		c.noPepper = true
		return nil
	}
}

// WithInstallID sets the installation identity mixed into every site salt.
func WithInstallID(id string) Option {
	return func(c *settingsConfig) error {
		c.install = id
		c.newInstall = false
		return nil
	}
}

// WithRandomInstallID generates a random UUID as the installation identity.
func WithRandomInstallID() Option {
	return func(c *settingsConfig) error {
		c.newInstall = true
		return nil
	}
}

// WithRandom sets the source of randomness for the pepper and install identity. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(c *settingsConfig) error {
		if r == nil {
			return errors.New("nil random source")
		}
		c.random = r
		return nil
	}
}
