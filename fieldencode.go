package bison

import "github.com/bisondb/bison/internal/varuint"

// The encode* helpers below build a complete marker+payload byte
// sequence for one scalar field. They are shared by Inserter (which
// splices the result in at an array's end) and ReviseSession's Update
// methods (which splice it in at an arbitrary interior offset), so the
// on-wire encoding of a given value never drifts between insert and
// update.

func encodeNullField() []byte { return []byte{byte(FieldNull)} }

func encodeBoolField(v bool) []byte {
	if v {
		return []byte{byte(FieldTrue)}
	}
	return []byte{byte(FieldFalse)}
}

func encodeUnsignedField(v uint64) []byte {
	ft := UnsignedWidthFor(v)
	buf := make([]byte, 1+ft.ValueSize())
	buf[0] = byte(ft)
	EncodeNumeric(ft, buf[1:], v)
	return buf
}

func encodeSignedField(v int64) []byte {
	ft := SignedWidthFor(v)
	buf := make([]byte, 1+ft.ValueSize())
	buf[0] = byte(ft)
	EncodeNumeric(ft, buf[1:], v)
	return buf
}

func encodeFloatField(v float32) []byte {
	buf := make([]byte, 1+4)
	buf[0] = byte(FieldFloat)
	EncodeNumeric(FieldFloat, buf[1:], v)
	return buf
}

func encodeStringField(v string) []byte {
	strBytes := []byte(v)
	prefixLen := varuint.RequiredBlocks(uint64(len(strBytes)))
	buf := make([]byte, 1+prefixLen+len(strBytes))
	buf[0] = byte(FieldString)
	varuint.EncodeInto(buf[1:1+prefixLen], uint64(len(strBytes)))
	copy(buf[1+prefixLen:], strBytes)
	return buf
}

func encodeBinaryField(mimeID uint32, data []byte) []byte {
	idLen := varuint.RequiredBlocks(uint64(mimeID))
	dataLen := varuint.RequiredBlocks(uint64(len(data)))
	buf := make([]byte, 1+idLen+dataLen+len(data))
	buf[0] = byte(FieldBinary)
	varuint.EncodeInto(buf[1:1+idLen], uint64(mimeID))
	varuint.EncodeInto(buf[1+idLen:1+idLen+dataLen], uint64(len(data)))
	copy(buf[1+idLen+dataLen:], data)
	return buf
}

func encodeBinaryCustomField(mimeName string, data []byte) []byte {
	nameBytes := []byte(mimeName)
	nameLen := varuint.RequiredBlocks(uint64(len(nameBytes)))
	dataLen := varuint.RequiredBlocks(uint64(len(data)))
	buf := make([]byte, 1+nameLen+len(nameBytes)+dataLen+len(data))
	buf[0] = byte(FieldBinaryCustom)
	varuint.EncodeInto(buf[1:1+nameLen], uint64(len(nameBytes)))
	copy(buf[1+nameLen:1+nameLen+len(nameBytes)], nameBytes)
	off := 1 + nameLen + len(nameBytes)
	varuint.EncodeInto(buf[off:off+dataLen], uint64(len(data)))
	copy(buf[off+dataLen:], data)
	return buf
}
