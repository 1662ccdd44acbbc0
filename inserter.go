package bison

import "github.com/bisondb/bison/internal/membuf"

// Inserter appends fields to an existing array, growing it in place by
// shifting everything from the closing ']' onward to the right exactly
// as far as each new slot requires. Numeric appends follow
// UnsignedWidthFor/SignedWidthFor type promotion: each value lands at
// the narrowest width that represents it, independent of any other
// element already in the array.
type Inserter struct {
	mf  *membuf.File
	end int // offset of the ']' new slots are spliced in before
}

// NewInserter opens an inserter over the array whose leading '[' sits at
// offset. mf must be a ReadWrite file.
func NewInserter(mf *membuf.File, offset int) (*Inserter, error) {
	if mf.Mode() != membuf.ReadWrite {
		return nil, membuf.ErrWriteProtected
	}
	end, err := arrayEndOffset(mf, offset)
	if err != nil {
		return nil, err
	}
	return &Inserter{mf: mf, end: end}, nil
}

func arrayEndOffset(mf *membuf.File, offset int) (int, error) {
	dup := membuf.Dup(mf)
	if err := dup.Seek(offset); err != nil {
		return 0, err
	}
	marker, err := dup.Read(1)
	if err != nil {
		return 0, err
	}
	if marker[0] != markerArrayBegin {
		return 0, newErr(KindMarkerMapping, "offset %d is not an array ('[' expected, got 0x%02x)", offset, marker[0])
	}
	if err := skipArrayBody(dup); err != nil {
		return 0, err
	}
	return dup.Tell() - 1, nil
}

// End returns the offset of the array's closing ']' as it currently
// stands, i.e. where the next inserted slot will land.
func (ins *Inserter) End() int { return ins.end }

// insertRaw splices slot (a complete marker+payload byte sequence) in
// immediately before the array's closing ']' and advances the tracked
// end offset past it.
func (ins *Inserter) insertRaw(slot []byte) error {
	if err := ins.mf.Seek(ins.end); err != nil {
		return err
	}
	if err := ins.mf.MoveRight(len(slot)); err != nil {
		return err
	}
	if err := ins.mf.Seek(ins.end); err != nil {
		return err
	}
	if err := ins.mf.Write(slot); err != nil {
		return err
	}
	ins.end += len(slot)
	return nil
}

// Null appends a null field.
func (ins *Inserter) Null() error { return ins.insertRaw(encodeNullField()) }

// Bool appends a boolean field.
func (ins *Inserter) Bool(v bool) error { return ins.insertRaw(encodeBoolField(v)) }

// Unsigned appends v at the narrowest unsigned width that represents it.
func (ins *Inserter) Unsigned(v uint64) error { return ins.insertRaw(encodeUnsignedField(v)) }

// Signed appends v at the narrowest signed width that represents it.
func (ins *Inserter) Signed(v int64) error { return ins.insertRaw(encodeSignedField(v)) }

// Float appends a 32-bit float field.
func (ins *Inserter) Float(v float32) error { return ins.insertRaw(encodeFloatField(v)) }

// String appends a UTF-8 string field, varuint-length-prefixed.
func (ins *Inserter) String(v string) error { return ins.insertRaw(encodeStringField(v)) }

// Binary appends a binary field tagged with a mimetype registry id (see
// the mimetype package).
func (ins *Inserter) Binary(mimeID uint32, data []byte) error {
	return ins.insertRaw(encodeBinaryField(mimeID, data))
}

// BinaryCustom appends a binary field tagged with a caller-provided MIME
// type name instead of a registry id, for content types the registry
// does not carry.
func (ins *Inserter) BinaryCustom(mimeName string, data []byte) error {
	return ins.insertRaw(encodeBinaryCustomField(mimeName, data))
}

// BeginArray appends an empty nested array and returns its offset, ready
// for a fresh Inserter to descend into.
func (ins *Inserter) BeginArray() (int, error) {
	offset := ins.end
	if err := ins.insertRaw([]byte{markerArrayBegin, markerArrayEnd}); err != nil {
		return 0, err
	}
	return offset, nil
}

// BeginColumn appends a column with capacity elements of elemType, each
// holding that width's null sentinel, and a logical element count of
// zero, and returns a ColumnInserter ready to write up to capacity
// elements into it. Elements are explicitly written through the
// returned ColumnInserter, which is what advances num_elements — the
// field the original implementation read everywhere but never wrote
// to, leaving every column permanently empty from a reader's
// perspective.
func (ins *Inserter) BeginColumn(elemType FieldType, capacity int) (*ColumnInserter, error) {
	width := elemType.ValueSize()
	if width == 0 {
		return nil, newErr(KindUnsupportedType, "column element type %v is not fixed-width", elemType)
	}
	offset := ins.end
	buf := make([]byte, 1+1+4+4+width*capacity+1)
	buf[0] = markerColumnBegin
	buf[1] = byte(elemType)
	putU32LE(buf[2:6], 0)
	putU32LE(buf[6:10], uint32(capacity))
	var sentinel interface{} = nullU64
	switch elemType {
	case FieldI8:
		sentinel = nullI8
	case FieldI16:
		sentinel = nullI16
	case FieldI32:
		sentinel = nullI32
	case FieldI64:
		sentinel = nullI64
	case FieldFloat:
		sentinel = nullFloat32()
	}
	for i := 0; i < capacity; i++ {
		EncodeNumeric(elemType, buf[10+i*width:10+(i+1)*width], sentinel)
	}
	buf[len(buf)-1] = markerColumnEnd
	if err := ins.insertRaw(buf); err != nil {
		return nil, err
	}
	return newColumnInserter(ins.mf, offset)
}
