package bison

import "math"

// FieldType is the one-byte tag identifying a field's variant. Nested
// array and column fields reuse their container's own begin marker as the
// field tag: the slot's marker byte doubles as the nested container's
// opening delimiter, so there is no separate "this is an array" tag
// distinct from '[' itself.
type FieldType byte

const (
	FieldNull         FieldType = 'n'
	FieldTrue         FieldType = 't'
	FieldFalse        FieldType = 'f'
	FieldU8           FieldType = 'C'
	FieldU16          FieldType = 'S'
	FieldU32          FieldType = 'I'
	FieldU64          FieldType = 'L'
	FieldI8           FieldType = 'c'
	FieldI16          FieldType = 's'
	FieldI32          FieldType = 'i'
	FieldI64          FieldType = 'l'
	FieldFloat        FieldType = 'F'
	FieldString       FieldType = '"'
	FieldBinary       FieldType = 'b'
	FieldBinaryCustom FieldType = 'x'
	FieldArray        = FieldType(markerArrayBegin)
	FieldObject       = FieldType(markerObjectBegin)
	FieldColumn       = FieldType(markerColumnBegin)
)

// Structural markers (§6, normative). These double as field-type tags for
// the three container field variants above.
const (
	markerArrayBegin  byte = 0x5B // '['
	markerArrayEnd    byte = 0x5D // ']'
	markerColumnBegin byte = 0x28 // '('
	markerColumnEnd   byte = 0x29 // ')'
	markerObjectBegin byte = 0x7B // '{' -- reserved, unimplemented
	markerObjectEnd   byte = 0x7D // '}' -- reserved, unimplemented
	markerReserved    byte = 0x00
)

// IsFixedWidth reports whether t occupies a statically-known number of
// payload bytes (i.e. is not string/binary/array/object/column, whose
// sizes must be discovered by reading or walking).
func (t FieldType) IsFixedWidth() bool {
	switch t {
	case FieldNull, FieldTrue, FieldFalse,
		FieldU8, FieldU16, FieldU32, FieldU64,
		FieldI8, FieldI16, FieldI32, FieldI64,
		FieldFloat:
		return true
	}
	return false
}

// IsSigned reports whether t is one of the signed integer widths.
func (t FieldType) IsSigned() bool {
	switch t {
	case FieldI8, FieldI16, FieldI32, FieldI64:
		return true
	}
	return false
}

// IsUnsigned reports whether t is one of the unsigned integer widths.
func (t FieldType) IsUnsigned() bool {
	switch t {
	case FieldU8, FieldU16, FieldU32, FieldU64:
		return true
	}
	return false
}

// ValueSize returns the number of payload bytes a fixed-width field
// occupies, excluding its marker byte. It returns 0 for variable-length or
// container types.
func (t FieldType) ValueSize() int {
	switch t {
	case FieldNull, FieldTrue, FieldFalse:
		return 0
	case FieldU8, FieldI8:
		return 1
	case FieldU16, FieldI16:
		return 2
	case FieldU32, FieldI32, FieldFloat:
		return 4
	case FieldU64, FieldI64:
		return 8
	}
	return 0
}

// String returns a short diagnostic name for t.
func (t FieldType) String() string {
	switch t {
	case FieldNull:
		return "null"
	case FieldTrue:
		return "true"
	case FieldFalse:
		return "false"
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU32:
		return "u32"
	case FieldU64:
		return "u64"
	case FieldI8:
		return "i8"
	case FieldI16:
		return "i16"
	case FieldI32:
		return "i32"
	case FieldI64:
		return "i64"
	case FieldFloat:
		return "float"
	case FieldString:
		return "string"
	case FieldBinary:
		return "binary"
	case FieldBinaryCustom:
		return "binary-custom"
	case FieldArray:
		return "array"
	case FieldObject:
		return "object"
	case FieldColumn:
		return "column"
	}
	return "unknown"
}

// Null sentinels per numeric width (§6, normative).
const (
	nullU8  uint8  = 0xFF
	nullU16 uint16 = 0xFFFF
	nullU32 uint32 = 0xFFFFFFFF
	nullU64 uint64 = 0xFFFFFFFFFFFFFFFF
	nullI8  int8   = math.MinInt8
	nullI16 int16  = math.MinInt16
	nullI32 int32  = math.MinInt32
	nullI64 int64  = math.MinInt64
)

// nullFloat32Bits is the bit pattern of the IEEE-754 quiet NaN used as the
// float32 null sentinel.
const nullFloat32Bits uint32 = 0x7FC00000

func nullFloat32() float32 { return math.Float32frombits(nullFloat32Bits) }

func isNullFloat32(v float32) bool { return math.Float32bits(v) == nullFloat32Bits }

// UnsignedWidthFor returns the narrowest unsigned FieldType that holds v.
// This is the type-promotion rule used by Inserter.Unsigned.
func UnsignedWidthFor(v uint64) FieldType {
	switch {
	case v <= uint64(math.MaxUint8-1): // MaxUint8 itself is the null sentinel
		return FieldU8
	case v <= uint64(math.MaxUint16-1):
		return FieldU16
	case v <= uint64(math.MaxUint32-1):
		return FieldU32
	default:
		return FieldU64
	}
}

// SignedWidthFor returns the narrowest signed FieldType that holds v.
// This is the type-promotion rule used by Inserter.Signed.
func SignedWidthFor(v int64) FieldType {
	switch {
	case v > math.MinInt8 && v <= math.MaxInt8:
		return FieldI8
	case v > math.MinInt16 && v <= math.MaxInt16:
		return FieldI16
	case v > math.MinInt32 && v <= math.MaxInt32:
		return FieldI32
	default:
		return FieldI64
	}
}
