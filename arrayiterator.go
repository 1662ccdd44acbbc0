package bison

import "github.com/bisondb/bison/internal/membuf"

// ArrayIterator walks the slots of an array body in document order,
// skipping reserved filler bytes transparently. Nested arrays and
// columns are surfaced whole (as a single slot of type FieldArray or
// FieldColumn) rather than recursed into; callers that need to descend
// open a fresh iterator at DataOffset.
type ArrayIterator struct {
	mf      *membuf.File
	current slotHeader
	err     error
}

// NewArrayIterator opens an iterator over the array whose leading '['
// sits at offset, on a private cursor duplicated from mf.
func NewArrayIterator(mf *membuf.File, offset int) (*ArrayIterator, error) {
	dup := membuf.Dup(mf)
	if err := dup.Seek(offset); err != nil {
		return nil, err
	}
	marker, err := dup.Read(1)
	if err != nil {
		return nil, err
	}
	if marker[0] != markerArrayBegin {
		return nil, newErr(KindMarkerMapping, "offset %d is not an array ('[' expected, got 0x%02x)", offset, marker[0])
	}
	return &ArrayIterator{mf: dup}, nil
}

// Next advances to the next non-reserved slot, returning false at the
// array's closing marker or on error (check Err).
func (it *ArrayIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for {
		b, err := it.mf.Peek(1)
		if err != nil {
			it.err = err
			return false
		}
		if b[0] == markerArrayEnd {
			_ = it.mf.Skip(1)
			return false
		}
		sh, err := readSlot(it.mf)
		if err != nil {
			it.err = err
			return false
		}
		if sh.Type == 0 {
			continue
		}
		it.current = sh
		return true
	}
}

// Type returns the current slot's field type. Valid only after Next
// returns true.
func (it *ArrayIterator) Type() FieldType { return it.current.Type }

// Offset returns the current slot's marker offset.
func (it *ArrayIterator) Offset() int { return it.current.Start }

// DataOffset returns the current slot's marker offset, the same value as
// Offset. For FieldArray/FieldColumn this IS the nested container's own
// opening offset, since the marker doubles as the container's begin
// delimiter.
func (it *ArrayIterator) DataOffset() int { return it.current.Start }

// End returns the offset just past the current slot.
func (it *ArrayIterator) End() int { return it.current.End }

// Err returns the first error encountered during iteration, if any.
func (it *ArrayIterator) Err() error { return it.err }

// File returns the iterator's private cursor.
func (it *ArrayIterator) File() *membuf.File { return it.mf }

// RawValue returns the current fixed-width slot's payload bytes.
// Returns an error for variable-length or container types.
func (it *ArrayIterator) RawValue() ([]byte, error) {
	ft := it.current.Type
	if !ft.IsFixedWidth() || ft.ValueSize() == 0 {
		return nil, newErr(KindTypeMismatch, "RawValue: %v is not a fixed-width scalar", ft)
	}
	dup := membuf.Dup(it.mf)
	if err := dup.Seek(it.current.Start + 1); err != nil {
		return nil, err
	}
	return dup.Read(ft.ValueSize())
}

// StringValue returns the current slot's string payload. Only valid when
// Type() == FieldString.
func (it *ArrayIterator) StringValue() (string, error) {
	if it.current.Type != FieldString {
		return "", newErr(KindTypeMismatch, "StringValue: slot is %v, not string", it.current.Type)
	}
	dup := membuf.Dup(it.mf)
	if err := dup.Seek(it.current.Start + 1); err != nil {
		return "", err
	}
	n, err := dup.ReadVarUint()
	if err != nil {
		return "", err
	}
	b, err := dup.Read(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BinaryValue returns the current slot's binary payload. For a
// FieldBinary slot, mimeName is empty and mimeID identifies a mimetype
// registry entry; for FieldBinaryCustom, mimeID is 0 and mimeName holds
// the inline MIME type string. Only valid for those two types.
func (it *ArrayIterator) BinaryValue() (mimeID uint32, mimeName string, data []byte, err error) {
	dup := membuf.Dup(it.mf)
	if err := dup.Seek(it.current.Start + 1); err != nil {
		return 0, "", nil, err
	}
	switch it.current.Type {
	case FieldBinary:
		id, err := dup.ReadVarUint()
		if err != nil {
			return 0, "", nil, err
		}
		n, err := dup.ReadVarUint()
		if err != nil {
			return 0, "", nil, err
		}
		b, err := dup.Read(int(n))
		if err != nil {
			return 0, "", nil, err
		}
		return uint32(id), "", b, nil
	case FieldBinaryCustom:
		nameLen, err := dup.ReadVarUint()
		if err != nil {
			return 0, "", nil, err
		}
		name, err := dup.Read(int(nameLen))
		if err != nil {
			return 0, "", nil, err
		}
		n, err := dup.ReadVarUint()
		if err != nil {
			return 0, "", nil, err
		}
		b, err := dup.Read(int(n))
		if err != nil {
			return 0, "", nil, err
		}
		return 0, string(name), b, nil
	default:
		return 0, "", nil, newErr(KindTypeMismatch, "BinaryValue: slot is %v, not binary", it.current.Type)
	}
}

// ArrayLength counts the array's visible (non-reserved) slots by
// exhausting a fresh iterator. It does not consume it.
func ArrayLength(mf *membuf.File, offset int) (int, error) {
	it, err := NewArrayIterator(mf, offset)
	if err != nil {
		return 0, err
	}
	n := 0
	for it.Next() {
		n++
	}
	if it.Err() != nil {
		return 0, it.Err()
	}
	return n, nil
}
