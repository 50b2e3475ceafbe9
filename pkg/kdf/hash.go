package kdf

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

var byteOrder = binary.LittleEndian

const seedLen = blake2b.Size + 8

// seed computes H0, leaving 8 trailing bytes for the block counter and lane index.
func seed(mode Mode, p Params, keyLen uint32, password, salt, secret, data []byte) ([seedLen]byte, error) {
	var h0 [seedLen]byte
	b2, err := blake2b.New512(nil)
	if err != nil {
		return h0, err
	}
	if err := newSeedHeader(mode, p, keyLen).writeTo(b2); err != nil {
		return h0, err
	}
	for _, in := range [][]byte{password, salt, secret, data} {
		writeLen(b2, len(in))
		b2.Write(in)
	}
	b2.Sum(h0[:0])
	return h0, nil
}

func writeLen(h hash.Hash, n int) {
	var buf [4]byte
	byteOrder.PutUint32(buf[:], uint32(n))
	h.Write(buf[:])
}

// longHash is the variable length hash function H' from RFC 9106, section 3.3.
func longHash(out []byte, in ...[]byte) {
	outLen := len(out)
	if outLen <= blake2b.Size {
		b2, _ := blake2b.New(outLen, nil)
		writeLen(b2, outLen)
		for _, b := range in {
			b2.Write(b)
		}
		b2.Sum(out[:0])
		return
	}

	var v [blake2b.Size]byte
	b2, _ := blake2b.New512(nil)
	writeLen(b2, outLen)
	for _, b := range in {
		b2.Write(b)
	}
	b2.Sum(v[:0])

	// Each intermediate digest contributes its first half; the final one is emitted whole.
	r := (outLen+31)/32 - 2
	pos := 0
	for i := 1; i < r; i++ {
		copy(out[pos:], v[:32])
		pos += 32
		v = blake2b.Sum512(v[:])
	}
	copy(out[pos:], v[:32])
	pos += 32

	last, _ := blake2b.New(outLen-pos, nil)
	last.Write(v[:])
	last.Sum(out[pos:pos])
}
