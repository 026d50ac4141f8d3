package sereal

// Package sereal implements the primitive layer of the Sereal binary
// serialization protocol on top of the buffer engine: document header framing
// and the byte-aligned value tags (small ints, varints, zigzag, floats,
// binary/UTF-8 strings, booleans, arrays and hashes).
//
// Reference tracking (REFP/COPY/ALIAS), the string deduplication table and
// body compression are not implemented here.

// Document magic. Protocol versions 1 and 2 carry "=srl"; version 3 switched
// the second byte to a non-ASCII one to catch encoding mangling.
const (
	Magic   = uint32(0x6C72733D) // "=srl" read little-endian
	MagicV3 = uint32(0x6C72F33D) // "=\xF3rl" read little-endian
)

// ProtocolVersion is the version this package writes.
const ProtocolVersion = 2

// MaxAlloc limits length-prefixed allocations while decoding, to keep a
// corrupt or hostile document from requesting an absurd slice.
const MaxAlloc = 100 * 1024 * 1024

// maxDepth bounds container/reference nesting while decoding.
const maxDepth = 10000

// Value tags. The low seven bits select the type; trackFlag marks a value
// whose offset may be the target of a back-reference.
const (
	tagPos0       = 0x00 // 0x00..0x0f: small positive int, value == tag
	tagNeg16      = 0x10 // 0x10..0x1f: small negative int, value == tag - 32
	tagVarint     = 0x20
	tagZigZag     = 0x21
	tagFloat      = 0x22
	tagDouble     = 0x23
	tagLongDouble = 0x24
	tagUndef      = 0x25
	tagBinary     = 0x26
	tagStrUTF8    = 0x27
	tagRefn       = 0x28
	tagRefp       = 0x29
	tagHash       = 0x2a
	tagArray      = 0x2b
	tagFalse      = 0x3a
	tagTrue       = 0x3b
	tagPad        = 0x3f

	tagArrayRef0   = 0x40 // 0x40..0x4f: array ref, count in the low nibble
	tagHashRef0    = 0x50 // 0x50..0x5f: hash ref, count in the low nibble
	tagShortBinary = 0x60 // 0x60..0x7f: binary, length in the low 5 bits

	trackFlag = 0x80
)

// shortBinaryMaxSize is the longest binary payload the short form can carry.
const shortBinaryMaxSize = 31

// smallIntMax/Min bound the single-byte integer tags.
const (
	smallIntMax = 15
	smallIntMin = -16
)
