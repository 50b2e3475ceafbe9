package novault

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultMinSecretLen is the shortest master secret accepted by default, in bytes.
	DefaultMinSecretLen = 10
	// DefaultMaxSecretLen is the longest master secret accepted by default, in bytes.
	DefaultMaxSecretLen = 32
	// PepperLen is the length of a generated Pepper.
	PepperLen = 256
)

const pepperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MasterSecret owns the bytes of the user's master secret.
// It has no serialization methods, and redacts itself when formatted.
type MasterSecret struct {
	buf []byte
}

// NewMasterSecret takes ownership of raw: the bytes are copied into a new MasterSecret, and raw is wiped.
func NewMasterSecret(raw []byte) *MasterSecret {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	wipe(raw)
	return &MasterSecret{buf: buf}
}

// Len returns the length of the secret in bytes.
func (m *MasterSecret) Len() int {
	if m == nil {
		return 0
	}
	return len(m.buf)
}

// Use calls fn with the secret bytes.
// fn must not retain or modify the slice.
func (m *MasterSecret) Use(fn func(secret []byte) error) error {
	if m == nil || m.buf == nil {
		return errors.New("master secret has been destroyed")
	}
	return fn(m.buf)
}

// Destroy wipes the secret. The MasterSecret can't be used afterward.
func (m *MasterSecret) Destroy() {
	if m == nil {
		return
	}
	wipe(m.buf)
	m.buf = nil
}

func (m *MasterSecret) String() string   { return "MasterSecret(redacted)" }
func (m *MasterSecret) GoString() string { return m.String() }

// LengthPolicy is the closed interval of accepted master secret lengths, in bytes.
type LengthPolicy struct {
	Min, Max int
}

// DefaultLengthPolicy accepts master secrets of 10 to 32 bytes.
func DefaultLengthPolicy() LengthPolicy {
	return LengthPolicy{Min: DefaultMinSecretLen, Max: DefaultMaxSecretLen}
}

// Check returns a *SecretLengthError if the master secret is outside the policy bounds.
func (p LengthPolicy) Check(master *MasterSecret) error {
	n := master.Len()
	if n < p.Min || n > p.Max {
		return &SecretLengthError{Len: n, Min: p.Min, Max: p.Max}
	}
	return nil
}

func (p LengthPolicy) validate() error {
	if p.Min < 1 || p.Max < p.Min {
		return fmt.Errorf("invalid master secret length policy [%d..%d]", p.Min, p.Max)
	}
	return nil
}

// Pepper is an optional high entropy value stored locally, acting as a second factor.
// An empty Pepper disables the second factor.
type Pepper string

// GeneratePepper reads from r to generate a PepperLen character alphanumeric Pepper.
func GeneratePepper(r io.Reader) (Pepper, error) {
	var (
		out = make([]byte, 0, PepperLen)
		buf = make([]byte, PepperLen)
		// Largest multiple of the alphabet size that fits in a byte, to avoid modulo bias.
		limit = byte(256 / len(pepperAlphabet) * len(pepperAlphabet))
	)
	for len(out) < PepperLen {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("failed to generate pepper: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, pepperAlphabet[int(b)%len(pepperAlphabet)])
			if len(out) == PepperLen {
				break
			}
		}
	}
	return Pepper(out), nil
}

func (p Pepper) String() string {
	if p == "" {
		return "Pepper(none)"
	}
	return "Pepper(redacted)"
}

func (p Pepper) GoString() string { return p.String() }

// CheckHash is the truncated fingerprint used to verify a master secret.
type CheckHash string

// SitePassword is a rendered site password.
// It redacts itself when formatted, so it can't be logged by accident.
type SitePassword struct {
	buf []byte
}

func newSitePassword(s string) *SitePassword {
	return &SitePassword{buf: []byte(s)}
}

// Reveal returns the password text.
func (p *SitePassword) Reveal() string {
	if p == nil {
		return ""
	}
	return string(p.buf)
}

// Len returns the length of the password.
func (p *SitePassword) Len() int {
	if p == nil {
		return 0
	}
	return len(p.buf)
}

// Destroy wipes the password.
func (p *SitePassword) Destroy() {
	if p == nil {
		return
	}
	wipe(p.buf)
	p.buf = nil
}

func (p *SitePassword) String() string   { return "SitePassword(redacted)" }
func (p *SitePassword) GoString() string { return p.String() }

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
