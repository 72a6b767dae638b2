// Package geom derives and validates the geometry of a cache organization.
// All sizes are in bits unless the field name says otherwise.
package geom

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnsupportedConfig marks configuration errors. Unsupported requests are
// rejected here, never silently coerced.
var ErrUnsupportedConfig = errors.New("unsupported cache configuration")

// Replacement policy names accepted in Config.ReplacementPolicy.
const (
	PolicyDirect = ""
	PolicyFIFO   = "fifo"
	PolicyLRU    = "lru"
	PolicyRandom = "random"
)

// Config holds the user-supplied parameters of a cache.
type Config struct {
	TotalSize    int // total data capacity, in bits
	WordSize     int // width of one word, in bits
	WordsPerLine int
	AddressSize  int // width of the CPU address, in bits
	NumWays      int

	ReplacementPolicy string
	WritePolicy       string // only "write-back"
	InstructionCache  bool   // not supported
	ReturnType        string // only "word"

	// DataHazard arms the bypass network so that same-set back-to-back
	// accesses take no extra cycle. When false the controller inserts a
	// one-cycle WAIT_HAZARD bubble instead.
	DataHazard bool
}

// DefaultConfig returns a valid direct-mapped starting point: 4 KB of data
// in 32-bit words, 4 words per line, 14-bit addresses.
func DefaultConfig() Config {
	return Config{
		TotalSize:    32768,
		WordSize:     32,
		WordsPerLine: 4,
		AddressSize:  14,
		NumWays:      1,
		WritePolicy:  "write-back",
		ReturnType:   "word",
		DataHazard:   true,
	}
}

// Geometry is the derived, immutable description of the cache organization.
// It is constructed once by Config.Derive and passed by value everywhere.
type Geometry struct {
	Config

	NumRows         int // sets
	TagSize         int
	SetSize         int
	OffsetSize      int
	LineSize        int // bits per line
	NumBytesPerWord int
	WriteMaskSize   int // bits in the byte write mask
	WaySize         int // bits needed to number a way; 0 for direct-mapped
}

// Derive computes the geometry from the config and validates consistency.
func (c Config) Derive() (Geometry, error) {
	if err := c.checkSupported(); err != nil {
		return Geometry{}, err
	}

	if c.TotalSize <= 0 || c.WordSize <= 0 ||
		c.WordsPerLine <= 0 || c.AddressSize <= 0 || c.NumWays <= 0 {
		return Geometry{}, fmt.Errorf(
			"%w: all size parameters must be positive", ErrUnsupportedConfig)
	}

	if c.WordSize%8 != 0 || c.WordSize > 64 {
		return Geometry{}, fmt.Errorf(
			"%w: word size %d must be a multiple of 8 no larger than 64",
			ErrUnsupportedConfig, c.WordSize)
	}

	if c.TotalSize%c.WordSize != 0 {
		return Geometry{}, fmt.Errorf(
			"%w: total size %d is not divisible by word size %d",
			ErrUnsupportedConfig, c.TotalSize, c.WordSize)
	}

	if !isPowerOfTwo(c.WordsPerLine) || !isPowerOfTwo(c.NumWays) {
		return Geometry{}, fmt.Errorf(
			"%w: words per line and number of ways must be powers of two",
			ErrUnsupportedConfig)
	}

	lineSize := c.WordSize * c.WordsPerLine
	if c.TotalSize%(lineSize*c.NumWays) != 0 {
		return Geometry{}, fmt.Errorf(
			"%w: total size %d does not hold a whole number of sets",
			ErrUnsupportedConfig, c.TotalSize)
	}

	numRows := c.TotalSize / (lineSize * c.NumWays)
	if !isPowerOfTwo(numRows) {
		return Geometry{}, fmt.Errorf(
			"%w: number of rows %d must be a power of two",
			ErrUnsupportedConfig, numRows)
	}

	// A single-row cache has a zero-width set field; the reset and flush
	// walks assume at least two rows.
	if numRows < 2 {
		return Geometry{}, fmt.Errorf(
			"%w: a cache of %d row is not supported, need at least 2",
			ErrUnsupportedConfig, numRows)
	}

	g := Geometry{
		Config:          c,
		NumRows:         numRows,
		SetSize:         log2(numRows),
		OffsetSize:      log2(c.WordsPerLine),
		LineSize:        lineSize,
		NumBytesPerWord: c.WordSize / 8,
		WriteMaskSize:   c.WordSize / 8,
		WaySize:         log2(c.NumWays),
	}
	g.TagSize = c.AddressSize - g.SetSize - g.OffsetSize

	if g.TagSize <= 0 {
		return Geometry{}, fmt.Errorf(
			"%w: address size %d leaves no room for a tag "+
				"(set %d bits, offset %d bits)",
			ErrUnsupportedConfig, c.AddressSize, g.SetSize, g.OffsetSize)
	}

	if c.NumWays > 1 && c.ReplacementPolicy == PolicyDirect {
		return Geometry{}, fmt.Errorf(
			"%w: a %d-way cache needs a replacement policy",
			ErrUnsupportedConfig, c.NumWays)
	}

	if c.NumWays == 1 && c.ReplacementPolicy != PolicyDirect {
		return Geometry{}, fmt.Errorf(
			"%w: replacement policy %q is meaningless for a direct-mapped cache",
			ErrUnsupportedConfig, c.ReplacementPolicy)
	}

	return g, nil
}

func (c Config) checkSupported() error {
	if c.InstructionCache {
		return fmt.Errorf(
			"%w: instruction caches are not supported", ErrUnsupportedConfig)
	}

	if c.WritePolicy != "" && c.WritePolicy != "write-back" {
		return fmt.Errorf(
			"%w: only the write-back policy is supported, got %q",
			ErrUnsupportedConfig, c.WritePolicy)
	}

	if c.ReturnType != "" && c.ReturnType != "word" {
		return fmt.Errorf(
			"%w: only word-granularity returns are supported, got %q",
			ErrUnsupportedConfig, c.ReturnType)
	}

	switch c.ReplacementPolicy {
	case PolicyDirect, PolicyFIFO, PolicyLRU, PolicyRandom:
		return nil
	default:
		return fmt.Errorf("%w: unknown replacement policy %q",
			ErrUnsupportedConfig, c.ReplacementPolicy)
	}
}

// Tag extracts the tag field of an address.
func (g Geometry) Tag(addr uint64) uint64 {
	return (addr >> uint(g.SetSize+g.OffsetSize)) & mask(g.TagSize)
}

// Set extracts the set field of an address.
func (g Geometry) Set(addr uint64) uint64 {
	return (addr >> uint(g.OffsetSize)) & mask(g.SetSize)
}

// Offset extracts the word offset field of an address.
func (g Geometry) Offset(addr uint64) uint64 {
	return addr & mask(g.OffsetSize)
}

// Concat rebuilds an address from its tag, set, and offset fields.
func (g Geometry) Concat(tag, set, offset uint64) uint64 {
	return tag<<uint(g.SetSize+g.OffsetSize) | set<<uint(g.OffsetSize) | offset
}

// LineAddr returns the main-memory line address (set plus tag) of an address,
// as presented on the main_addr port.
func (g Geometry) LineAddr(tag, set uint64) uint64 {
	return tag<<uint(g.SetSize) | set
}

// NumLines returns the number of lines the backing store can hold.
func (g Geometry) NumLines() int {
	return 1 << uint(g.TagSize+g.SetSize)
}

// WordMask returns the all-ones value of a word.
func (g Geometry) WordMask() uint64 {
	return mask(g.WordSize)
}

// FullWriteMask returns the write mask that selects every byte of a word.
func (g Geometry) FullWriteMask() uint64 {
	return mask(g.WriteMaskSize)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	return bits.Len(uint(n)) - 1
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}
