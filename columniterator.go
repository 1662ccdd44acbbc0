package bison

import "github.com/bisondb/bison/internal/membuf"

// ColumnIterator walks the fixed-width elements of a column body
// directly by index. Unlike ArrayIterator, elements carry no per-slot
// marker: the column's single element_type tag and capacity/count pair
// are all that is needed to compute any element's offset, which is the
// representation's entire reason for existing over a plain array of
// same-typed scalars.
type ColumnIterator struct {
	mf        *membuf.File
	elemType  FieldType
	numElems  int
	capacity  int
	elemsBase int
	width     int
	idx       int
}

// NewColumnIterator opens an iterator over the column whose leading '('
// sits at offset, on a private cursor duplicated from mf.
func NewColumnIterator(mf *membuf.File, offset int) (*ColumnIterator, error) {
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
	numB, err := dup.Read(4)
	if err != nil {
		return nil, err
	}
	capB, err := dup.Read(4)
	if err != nil {
		return nil, err
	}
	return &ColumnIterator{
		mf:        dup,
		elemType:  elemType,
		numElems:  int(getU32LE(numB)),
		capacity:  int(getU32LE(capB)),
		elemsBase: dup.Tell(),
		width:     width,
		idx:       -1,
	}, nil
}

// ElementType returns the column's fixed element type.
func (it *ColumnIterator) ElementType() FieldType { return it.elemType }

// NumElements returns the column's logical element count.
func (it *ColumnIterator) NumElements() int { return it.numElems }

// Capacity returns the column's allocated slot count (>= NumElements).
func (it *ColumnIterator) Capacity() int { return it.capacity }

// BodyEnd returns the offset just past the column's closing ')'.
func (it *ColumnIterator) BodyEnd() int {
	return it.elemsBase + it.capacity*it.width + 1
}

// Next advances to the next logical element, returning false once
// NumElements elements have been visited.
func (it *ColumnIterator) Next() bool {
	it.idx++
	return it.idx < it.numElems
}

// Index returns the zero-based index of the current element.
func (it *ColumnIterator) Index() int { return it.idx }

// Offset returns the absolute byte offset of the current element.
func (it *ColumnIterator) Offset() int {
	return it.elemsBase + it.idx*it.width
}

// Raw returns the current element's raw bytes.
func (it *ColumnIterator) Raw() ([]byte, error) {
	dup := membuf.Dup(it.mf)
	if err := dup.Seek(it.Offset()); err != nil {
		return nil, err
	}
	return dup.Read(it.width)
}

// IsNull reports whether the current element holds ElementType's null
// sentinel.
func (it *ColumnIterator) IsNull() (bool, error) {
	raw, err := it.Raw()
	if err != nil {
		return false, err
	}
	return IsNullValue(it.elemType, raw), nil
}

// Value decodes the current element via DecodeNumeric.
func (it *ColumnIterator) Value() (interface{}, error) {
	raw, err := it.Raw()
	if err != nil {
		return nil, err
	}
	return DecodeNumeric(it.elemType, raw), nil
}

// ElementOffset returns the absolute byte offset of the element at idx,
// without reading it. idx must be < NumElements(); use ElementAt to
// also read the element for a Capacity-bounded index.
func (it *ColumnIterator) ElementOffset(idx int) (int, error) {
	if idx < 0 || idx >= it.numElems {
		return 0, newErr(KindOutOfBounds, "column index %d out of range [0,%d)", idx, it.numElems)
	}
	return it.elemsBase + idx*it.width, nil
}

// ElementAt seeks directly to the element at idx without iterating
// through the preceding ones; idx must be < Capacity().
func (it *ColumnIterator) ElementAt(idx int) ([]byte, error) {
	if idx < 0 || idx >= it.capacity {
		return nil, newErr(KindOutOfBounds, "column index %d out of range [0,%d)", idx, it.capacity)
	}
	dup := membuf.Dup(it.mf)
	if err := dup.Seek(it.elemsBase + idx*it.width); err != nil {
		return nil, err
	}
	return dup.Read(it.width)
}
