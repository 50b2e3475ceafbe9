package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// screen XORs bytes with a repeating key, starting at an offset into the key.
// Applying the same screen twice restores the original bytes.
type screen struct {
	key  []byte
	init int
	cur  int
}

func newScreen(key []byte, offset int) (*screen, error) {
	if len(key) == 0 {
		return nil, errors.New("cannot use empty key")
	}
	if offset < 0 || offset >= len(key) {
		return nil, fmt.Errorf("offset %d out of range for key of len %d", offset, len(key))
	}
	return &screen{key: key, init: offset, cur: offset}, nil
}

// apply writes src XOR the key stream to dst, which must be at least as long as src.
// The screen is reset first, so every call uses the same key stream.
func (s *screen) apply(dst, src []byte) {
	s.cur = s.init
	for i, b := range src {
		dst[i] = b ^ s.key[s.cur]
		s.cur = (s.cur + 1) % len(s.key)
	}
}

func (s *screen) destroy() {
	wipe(s.key)
	s.key = nil
	s.init, s.cur = 0, 0
}

// genKeyAndOffset reads a key of the given length and a random offset into it from r.
func genKeyAndOffset(r io.Reader, length int) ([]byte, int, error) {
	if length <= 0 {
		return nil, 0, errors.New("asked to generate a 0-length key")
	}
	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, 0, fmt.Errorf("failed to read key bytes: %w", err)
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, 0, fmt.Errorf("failed to read key offset: %w", err)
	}
	return key, int(binary.BigEndian.Uint32(buf[:]) % uint32(length)), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
