package kdf

import (
	"fmt"
	"sync"
)

// Key derives keyLen bytes from the given inputs with the Argon2 variant selected by mode.
//
//   - password is the primary input (P)
//   - salt must be at least MinSaltLen bytes (S)
//   - secret is an optional key value (K), may be nil
//   - data is optional associated data (X), may be nil
//
// The same inputs and Params always produce the same output.
func Key(mode Mode, password, salt, secret, data []byte, params Params, keyLen uint32) ([]byte, error) {
	if mode > Argon2id {
		return nil, fmt.Errorf("%w: unknown mode %s", ErrInvalidParams, mode)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if keyLen < MinKeyLen {
		return nil, fmt.Errorf("%w: key length must be at least %d", ErrInvalidParams, MinKeyLen)
	}
	if len(salt) < MinSaltLen {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidParams, MinSaltLen)
	}

	h0, err := seed(mode, params, keyLen, password, salt, secret, data)
	if err != nil {
		return nil, err
	}
	m := newMatrix(mode, params)
	m.init(&h0)
	for pass := uint32(0); pass < params.Time; pass++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			m.fillSlice(pass, slice)
		}
	}
	return m.finalize(keyLen), nil
}

// matrix is the Argon2 memory, laid out lane after lane.
type matrix struct {
	mode     Mode
	version  uint32
	passes   uint32
	lanes    uint32
	laneLen  uint32
	segLen   uint32
	memory   []block
	blockBuf [blockBytes]byte
}

func newMatrix(mode Mode, p Params) *matrix {
	total := p.blocks()
	laneLen := total / p.Threads
	return &matrix{
		mode:    mode,
		version: p.version(),
		passes:  p.Time,
		lanes:   p.Threads,
		laneLen: laneLen,
		segLen:  laneLen / syncPoints,
		memory:  make([]block, total),
	}
}

func (m *matrix) at(lane, index uint32) *block {
	return &m.memory[lane*m.laneLen+index]
}

// init fills the first two blocks of each lane from the seed.
func (m *matrix) init(h0 *[seedLen]byte) {
	for lane := uint32(0); lane < m.lanes; lane++ {
		byteOrder.PutUint32(h0[seedLen-4:], lane)
		for i := uint32(0); i < 2; i++ {
			byteOrder.PutUint32(h0[seedLen-8:], i)
			longHash(m.blockBuf[:], h0[:])
			m.at(lane, i).load(m.blockBuf[:])
		}
	}
}

func (m *matrix) fillSlice(pass, slice uint32) {
	if m.lanes == 1 {
		m.fillSegment(pass, slice, 0)
		return
	}
	var wg sync.WaitGroup
	wg.Add(int(m.lanes))
	for lane := uint32(0); lane < m.lanes; lane++ {
		go func(lane uint32) {
			defer wg.Done()
			m.fillSegment(pass, slice, lane)
		}(lane)
	}
	wg.Wait()
}

func (m *matrix) independent(pass, slice uint32) bool {
	switch m.mode {
	case Argon2i:
		return true
	case Argon2id:
		return pass == 0 && slice < syncPoints/2
	default:
		return false
	}
}

func (m *matrix) fillSegment(pass, slice, lane uint32) {
	var (
		addrs   addressGenerator
		useAddr = m.independent(pass, slice)
		start   uint32
	)
	if useAddr {
		addrs = newAddressGenerator(pass, lane, slice, uint32(len(m.memory)), m.passes, m.mode)
	}
	if pass == 0 && slice == 0 {
		start = 2
		if useAddr {
			addrs.next()
		}
	}

	for index := start; index < m.segLen; index++ {
		cur := slice*m.segLen + index
		prev := cur - 1
		if cur == 0 {
			prev = m.laneLen - 1
		}

		var rand uint64
		if useAddr {
			if index%blockWords == 0 {
				addrs.next()
			}
			rand = addrs.out[index%blockWords]
		} else {
			rand = m.at(lane, prev)[0]
		}

		refLane, refIndex := m.reference(rand, pass, slice, lane, index)
		compress(m.at(lane, cur), m.at(lane, prev), m.at(refLane, refIndex), m.overwrites(pass))
	}
}

// overwrites reports whether blocks computed in pass replace memory instead of being XORed into it.
func (m *matrix) overwrites(pass uint32) bool {
	return pass == 0 || m.version == Version10
}

// reference maps a pseudo-random value to the lane and index of the reference block, following RFC 9106, section 3.4.1.
func (m *matrix) reference(rand uint64, pass, slice, lane, index uint32) (uint32, uint32) {
	refLane := uint32(rand>>32) % m.lanes
	if pass == 0 && slice == 0 {
		refLane = lane
	}
	sameLane := refLane == lane

	var area, startPos uint32
	if pass == 0 {
		area = slice * m.segLen
	} else {
		area = m.laneLen - m.segLen
		startPos = ((slice + 1) % syncPoints) * m.segLen
	}
	if sameLane {
		area += index - 1
	} else if index == 0 {
		area--
	}

	j1 := rand & 0xFFFFFFFF
	x := (j1 * j1) >> 32
	y := (uint64(area) * x) >> 32
	rel := uint64(area) - 1 - y
	return refLane, uint32((uint64(startPos) + rel) % uint64(m.laneLen))
}

// finalize combines the last column of blocks and hashes it down to keyLen bytes.
func (m *matrix) finalize(keyLen uint32) []byte {
	var final block
	for lane := uint32(0); lane < m.lanes; lane++ {
		final.xor(m.at(lane, m.laneLen-1))
	}
	final.store(m.blockBuf[:])
	key := make([]byte, keyLen)
	longHash(key, m.blockBuf[:])
	return key
}

// addressGenerator produces the data-independent reference values for Argon2i and the first half of Argon2id.
type addressGenerator struct {
	in   block
	out  block
	zero block
}

func newAddressGenerator(pass, lane, slice, totalBlocks, passes uint32, mode Mode) addressGenerator {
	var g addressGenerator
	g.in[0] = uint64(pass)
	g.in[1] = uint64(lane)
	g.in[2] = uint64(slice)
	g.in[3] = uint64(totalBlocks)
	g.in[4] = uint64(passes)
	g.in[5] = uint64(mode)
	return g
}

func (g *addressGenerator) next() {
	g.in[6]++
	compress(&g.out, &g.zero, &g.in, true)
	compress(&g.out, &g.zero, &g.out, true)
}
