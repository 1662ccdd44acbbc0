package bison

import "github.com/bisondb/bison/internal/membuf"

// ColumnInserter writes elements into a column body created by
// Inserter.BeginColumn, advancing the column's num_elements count on
// every write and refusing once capacity is exhausted. This is the
// write-side counterpart missing from the source implementation, which
// read num_elements everywhere but never incremented it: a column
// built only with BeginColumn stayed permanently empty to every reader
// no matter how many element-sized zero bytes were poked into it.
type ColumnInserter struct {
	mf           *membuf.File
	elemType     FieldType
	width        int
	capacity     int
	numElements  int
	countOffset  int // offset of the num_elements u32 field
	elemsBase    int // offset of element 0
}

// newColumnInserter opens a ColumnInserter over the column body whose
// leading '(' sits at offset, as just written by Inserter.BeginColumn
// (so num_elements is known to be 0 and capacity is read back out of
// the bytes just written).
func newColumnInserter(mf *membuf.File, offset int) (*ColumnInserter, error) {
	dup := membuf.Dup(mf)
	if err := dup.Seek(offset); err != nil {
		return nil, err
	}
	marker, err := dup.Read(1)
	if err != nil {
		return nil, err
	}
	if marker[0] != markerColumnBegin {
		return nil, newErr(KindMarkerMapping, "offset %d is not a column ('(' expected, got 0x%02x)", offset, marker[0])
	}
	elemTypeB, err := dup.Read(1)
	if err != nil {
		return nil, err
	}
	elemType := FieldType(elemTypeB[0])
	width := elemType.ValueSize()
	if width == 0 {
		return nil, newErr(KindUnsupportedType, "column element type %v is not fixed-width", elemType)
	}
	countOffset := dup.Tell()
	numB, err := dup.Read(4)
	if err != nil {
		return nil, err
	}
	capB, err := dup.Read(4)
	if err != nil {
		return nil, err
	}
	return &ColumnInserter{
		mf:          mf,
		elemType:    elemType,
		width:       width,
		capacity:    int(getU32LE(capB)),
		numElements: int(getU32LE(numB)),
		countOffset: countOffset,
		elemsBase:   dup.Tell(),
	}, nil
}

// NumElements returns the column's current logical element count.
func (ci *ColumnInserter) NumElements() int { return ci.numElements }

// Capacity returns the column's fixed element capacity.
func (ci *ColumnInserter) Capacity() int { return ci.capacity }

// ElementType returns the column's fixed element type.
func (ci *ColumnInserter) ElementType() FieldType { return ci.elemType }

// Write encodes v as one column element at the next free slot and
// advances num_elements, rejecting with KindOutOfBounds once capacity
// elements have already been written.
func (ci *ColumnInserter) Write(v interface{}) error {
	if ci.numElements >= ci.capacity {
		return newErr(KindOutOfBounds, "column at capacity %d", ci.capacity)
	}
	buf := make([]byte, ci.width)
	EncodeNumeric(ci.elemType, buf, v)
	off := ci.elemsBase + ci.numElements*ci.width
	if err := ci.mf.Seek(off); err != nil {
		return err
	}
	if err := ci.mf.Write(buf); err != nil {
		return err
	}
	ci.numElements++
	return ci.writeCount()
}

// WriteUnsigned writes v, failing with KindTypeMismatch if the
// column's element type is not one of the unsigned integer widths or is
// narrower than v needs.
func (ci *ColumnInserter) WriteUnsigned(v uint64) error {
	if !ci.elemType.IsUnsigned() {
		return newErr(KindTypeMismatch, "column element type %v is not unsigned", ci.elemType)
	}
	if UnsignedWidthFor(v).ValueSize() > ci.width {
		return newErr(KindTypeMismatch, "value %d does not fit column element type %v", v, ci.elemType)
	}
	return ci.Write(v)
}

// WriteSigned writes v, failing with KindTypeMismatch if the column's
// element type is not one of the signed integer widths or is narrower
// than v needs.
func (ci *ColumnInserter) WriteSigned(v int64) error {
	if !ci.elemType.IsSigned() {
		return newErr(KindTypeMismatch, "column element type %v is not signed", ci.elemType)
	}
	if SignedWidthFor(v).ValueSize() > ci.width {
		return newErr(KindTypeMismatch, "value %d does not fit column element type %v", v, ci.elemType)
	}
	return ci.Write(v)
}

// WriteFloat writes v, failing with KindTypeMismatch if the column's
// element type is not FieldFloat.
func (ci *ColumnInserter) WriteFloat(v float32) error {
	if ci.elemType != FieldFloat {
		return newErr(KindTypeMismatch, "column element type %v is not float", ci.elemType)
	}
	return ci.Write(v)
}

func (ci *ColumnInserter) writeCount() error {
	buf := make([]byte, 4)
	putU32LE(buf, uint32(ci.numElements))
	if err := ci.mf.Seek(ci.countOffset); err != nil {
		return err
	}
	return ci.mf.Write(buf)
}
