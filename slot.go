package bison

import "github.com/bisondb/bison/internal/membuf"

// slotHeader describes one decoded array slot: its field type (0 for a
// reserved filler byte), the absolute offset of its marker, and the
// absolute offset one past its last byte.
type slotHeader struct {
	Type  FieldType
	Start int
	End   int
}

// readSlot decodes the slot at mf's current cursor and advances past it.
// A reserved (zero) byte is surfaced as a one-byte slot with Type == 0 so
// callers can skip it or reuse the space.
func readSlot(mf *membuf.File) (slotHeader, error) {
	start := mf.Tell()
	b, err := mf.Read(1)
	if err != nil {
		return slotHeader{}, err
	}
	marker := b[0]
	if marker == markerReserved {
		return slotHeader{Type: 0, Start: start, End: mf.Tell()}, nil
	}

	ft := FieldType(marker)
	switch {
	case ft.IsFixedWidth():
		if n := ft.ValueSize(); n > 0 {
			if err := mf.Skip(n); err != nil {
				return slotHeader{}, err
			}
		}
	case ft == FieldString:
		n, err := mf.ReadVarUint()
		if err != nil {
			return slotHeader{}, err
		}
		if err := mf.Skip(int(n)); err != nil {
			return slotHeader{}, err
		}
	case ft == FieldBinary:
		if _, err := mf.ReadVarUint(); err != nil { // mime registry id
			return slotHeader{}, err
		}
		n, err := mf.ReadVarUint()
		if err != nil {
			return slotHeader{}, err
		}
		if err := mf.Skip(int(n)); err != nil {
			return slotHeader{}, err
		}
	case ft == FieldBinaryCustom:
		nameLen, err := mf.ReadVarUint()
		if err != nil {
			return slotHeader{}, err
		}
		if err := mf.Skip(int(nameLen)); err != nil {
			return slotHeader{}, err
		}
		n, err := mf.ReadVarUint()
		if err != nil {
			return slotHeader{}, err
		}
		if err := mf.Skip(int(n)); err != nil {
			return slotHeader{}, err
		}
	case marker == markerArrayBegin:
		if err := skipArrayBody(mf); err != nil {
			return slotHeader{}, err
		}
	case marker == markerColumnBegin:
		if err := skipColumnBody(mf); err != nil {
			return slotHeader{}, err
		}
	case marker == markerObjectBegin:
		return slotHeader{}, newErr(KindNotImplemented, "object fields are reserved and not yet supported")
	default:
		return slotHeader{}, newErr(KindMarkerMapping, "unrecognized field marker 0x%02x at offset %d", marker, start)
	}
	return slotHeader{Type: ft, Start: start, End: mf.Tell()}, nil
}

// skipArrayBody advances past an array body whose opening '[' has already
// been consumed as the enclosing slot's marker, leaving the cursor just
// past the matching ']'.
func skipArrayBody(mf *membuf.File) error {
	for {
		b, err := mf.Peek(1)
		if err != nil {
			return err
		}
		if b[0] == markerArrayEnd {
			return mf.Skip(1)
		}
		if _, err := readSlot(mf); err != nil {
			return err
		}
	}
}

// skipColumnBody advances past a column body whose opening '(' has
// already been consumed as the enclosing slot's marker, leaving the
// cursor just past the matching ')'.
func skipColumnBody(mf *membuf.File) error {
	elemTypeB, err := mf.Read(1)
	if err != nil {
		return err
	}
	elemType := FieldType(elemTypeB[0])
	if _, err := mf.Read(4); err != nil { // num_elements, unused here
		return err
	}
	capB, err := mf.Read(4)
	if err != nil {
		return err
	}
	capacity := int(getU32LE(capB))
	width := elemType.ValueSize()
	if width == 0 {
		return newErr(KindUnsupportedType, "column element type %v is not fixed-width", elemType)
	}
	if err := mf.Skip(width * capacity); err != nil {
		return err
	}
	end, err := mf.Read(1)
	if err != nil {
		return err
	}
	if end[0] != markerColumnEnd {
		return newErr(KindCorrupted, "column body missing closing marker")
	}
	return nil
}
