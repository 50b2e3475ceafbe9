package novault

import (
	"crypto/subtle"
	"fmt"
)

const (
	// CheckName is the reserved site name used to compute the CheckHash.
	CheckName = "__checkhash__"
	// CheckHashLen is the length of a CheckHash.
	// It's kept short so the stored value reveals as little as possible about the master secret.
	CheckHashLen = 16
)

var checkSite = Site{
	Fmt:  fmt.Sprintf("{p:.%d}", CheckHashLen),
	Salt: CheckName,
}

// ComputeCheckHash derives the CheckHash for the master secret with the given Settings.
// The stored CheckHash in settings is ignored.
func (e *Engine) ComputeCheckHash(settings Settings, master *MasterSecret) (CheckHash, error) {
	hash, err := e.HashString(settings, master, checkSite)
	if err != nil {
		return "", err
	}
	out, err := Format(checkSite.Fmt, hash)
	if err != nil {
		return "", err
	}
	return CheckHash(out), nil
}

// ValidateCheckHash returns ErrCheckFailed if the master secret doesn't reproduce the CheckHash stored in settings.
func (e *Engine) ValidateCheckHash(settings Settings, master *MasterSecret) error {
	got, err := e.ComputeCheckHash(settings, master)
	if err != nil {
		return err
	}
	want := settings.CheckHash()
	if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrCheckFailed
	}
	return nil
}

// ComputeCheckHash calls Engine.ComputeCheckHash with the default Engine.
func ComputeCheckHash(settings Settings, master *MasterSecret) (CheckHash, error) {
	return defaultEngine.ComputeCheckHash(settings, master)
}

// ValidateCheckHash calls Engine.ValidateCheckHash with the default Engine.
func ValidateCheckHash(settings Settings, master *MasterSecret) error {
	return defaultEngine.ValidateCheckHash(settings, master)
}
