package kdf

import (
	"errors"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
)

const (
	// Version10 is the first published Argon2 version. Every pass overwrites memory.
	Version10 uint32 = 0x10
	// Version13 is the version standardized in RFC 9106. Passes after the first XOR into memory.
	Version13 uint32 = 0x13
	// Version is used when Params.Version is zero.
	Version = Version13
)

const (
	// MinKeyLen is the smallest output length Argon2 allows.
	MinKeyLen uint32 = 4
	// MinSaltLen is the smallest salt length Argon2 allows.
	MinSaltLen = 8
	// MaxThreads is the largest degree of parallelism Argon2 allows.
	MaxThreads uint32 = 1<<24 - 1
)

var (
	ErrInvalidParams = errors.New("invalid argon2 parameters")
)

// Mode selects the Argon2 variant.
type Mode uint32

const (
	// Argon2d uses data-dependent memory access.
	Argon2d Mode = iota
	// Argon2i uses data-independent memory access.
	Argon2i
	// Argon2id uses data-independent access for the first half of the first pass, and data-dependent access after that.
	Argon2id
)

func (m Mode) String() string {
	switch m {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("argon2(%d)", uint32(m))
	}
}

// Params are the cost parameters for Argon2.
type Params struct {
	// Time is the number of passes over memory.
	Time uint32
	// MemoryKiB is the amount of memory to fill, in KiB.
	MemoryKiB uint32
	// Threads is the number of lanes, which are filled concurrently.
	Threads uint32
	// Version is Version10 or Version13. Zero selects Version.
	Version uint32
}

func (p Params) version() uint32 {
	if p.Version == 0 {
		return Version
	}
	return p.Version
}

// Validate returns an error wrapping ErrInvalidParams if the parameters can't be used with Argon2.
func (p Params) Validate() error {
	if p.Time < 1 {
		return fmt.Errorf("%w: time cost must be at least 1", ErrInvalidParams)
	}
	if v := p.version(); v != Version10 && v != Version13 {
		return fmt.Errorf("%w: unsupported version 0x%x", ErrInvalidParams, v)
	}
	if p.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidParams)
	}
	if p.Threads > MaxThreads {
		return fmt.Errorf("%w: threads must be at most %d", ErrInvalidParams, MaxThreads)
	}
	if uint64(p.MemoryKiB) < 2*syncPoints*uint64(p.Threads) {
		return fmt.Errorf("%w: memory must be at least %d KiB for %d threads", ErrInvalidParams, 2*syncPoints*p.Threads, p.Threads)
	}
	return nil
}

// blocks returns the number of 1 KiB blocks actually used, which is memory rounded down to a multiple of 4*Threads.
func (p Params) blocks() uint32 {
	unit := syncPoints * p.Threads
	return p.MemoryKiB / unit * unit
}

// seedHeader is the fixed-size prefix of the seed hash input.
type seedHeader struct {
	lanes   uint32
	keyLen  uint32
	memory  uint32
	time    uint32
	version uint32
	mode    uint32
}

func (h *seedHeader) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&h.lanes),
		bin.Int(&h.keyLen),
		bin.Int(&h.memory),
		bin.Int(&h.time),
		bin.Int(&h.version),
		bin.Int(&h.mode),
	)
}

func newSeedHeader(mode Mode, p Params, keyLen uint32) *seedHeader {
	return &seedHeader{
		lanes:   p.Threads,
		keyLen:  keyLen,
		memory:  p.MemoryKiB,
		time:    p.Time,
		version: p.version(),
		mode:    uint32(mode),
	}
}

func (h *seedHeader) writeTo(w io.Writer) error {
	return h.mapper().Write(w, byteOrder)
}
