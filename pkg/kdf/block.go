package kdf

import "math/bits"

const (
	blockWords = 128
	blockBytes = blockWords * 8
	syncPoints = 4
)

type block [blockWords]uint64

func (b *block) load(raw []byte) {
	for i := range b {
		b[i] = byteOrder.Uint64(raw[i*8:])
	}
}

func (b *block) store(raw []byte) {
	for i, v := range b {
		byteOrder.PutUint64(raw[i*8:], v)
	}
}

func (b *block) xor(other *block) {
	for i := range b {
		b[i] ^= other[i]
	}
}

// compress computes G(x, y). With overwrite false the result is XORed into out, which is how every pass after the first updates memory.
func compress(out, x, y *block, overwrite bool) {
	var r, q block
	for i := range r {
		r[i] = x[i] ^ y[i]
	}
	q = r

	// Rows: 8 groups of 16 consecutive words.
	for i := 0; i < blockWords; i += 16 {
		permute((*[16]uint64)(q[i : i+16]))
	}
	// Columns: 8 groups of 2 adjacent words from each row.
	var col [16]uint64
	for i := 0; i < 16; i += 2 {
		for row := 0; row < 8; row++ {
			col[2*row] = q[row*16+i]
			col[2*row+1] = q[row*16+i+1]
		}
		permute(&col)
		for row := 0; row < 8; row++ {
			q[row*16+i] = col[2*row]
			q[row*16+i+1] = col[2*row+1]
		}
	}

	if overwrite {
		for i := range out {
			out[i] = r[i] ^ q[i]
		}
		return
	}
	for i := range out {
		out[i] ^= r[i] ^ q[i]
	}
}

// permute is the BLAKE2b round function P with the multiplication-hardened BlaMka mixing.
func permute(v *[16]uint64) {
	mix(v, 0, 4, 8, 12)
	mix(v, 1, 5, 9, 13)
	mix(v, 2, 6, 10, 14)
	mix(v, 3, 7, 11, 15)

	mix(v, 0, 5, 10, 15)
	mix(v, 1, 6, 11, 12)
	mix(v, 2, 7, 8, 13)
	mix(v, 3, 4, 9, 14)
}

func mix(v *[16]uint64, a, b, c, d int) {
	v[a] = blamka(v[a], v[b])
	v[d] = bits.RotateLeft64(v[d]^v[a], -32)
	v[c] = blamka(v[c], v[d])
	v[b] = bits.RotateLeft64(v[b]^v[c], -24)

	v[a] = blamka(v[a], v[b])
	v[d] = bits.RotateLeft64(v[d]^v[a], -16)
	v[c] = blamka(v[c], v[d])
	v[b] = bits.RotateLeft64(v[b]^v[c], -63)
}

func blamka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}
