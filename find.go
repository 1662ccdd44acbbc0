package bison

import (
	"github.com/bisondb/bison/internal/membuf"
	"github.com/bisondb/bison/mimetype"
)

// FindResult is the outcome of evaluating a DotPath against a document.
// Exactly one of the typed accessors below is meaningful, selected by
// Type; Found is false if the path did not resolve to any field.
type FindResult struct {
	Found bool
	Type  FieldType

	Bool       bool
	Unsigned   uint64
	Signed     int64
	Float      float32
	IsNull     bool
	String     string
	BinaryData []byte
	MimeID     uint32
	MimeName   string

	// ArrayOffset/ColumnOffset hold the offset of a nested container
	// result, for callers that want to open their own iterator rather
	// than have Find flatten it.
	ArrayOffset  int
	ColumnOffset int
}

// Find evaluates path against the array rooted at offset within mf,
// mirroring the original find routine's array/column traversal.
func Find(mf *membuf.File, offset int, path *DotPath) (FindResult, error) {
	if path.IsEmpty() {
		return FindResult{Found: true, Type: FieldArray, ArrayOffset: offset}, nil
	}
	return findInArray(mf, offset, path, 0)
}

func findInArray(mf *membuf.File, offset int, path *DotPath, pos int) (FindResult, error) {
	node, err := path.At(pos)
	if err != nil {
		return FindResult{}, err
	}
	if node.Type != DotNodeArrayIdx {
		return FindResult{}, newErr(KindNotImplemented, "keyed access %q requires an object field, which is not yet supported", node.Key)
	}

	it, err := NewArrayIterator(mf, offset)
	if err != nil {
		return FindResult{}, err
	}
	var idx uint32
	for it.Next() {
		if idx == node.Idx {
			return resolveSlot(it, path, pos)
		}
		idx++
	}
	if it.Err() != nil {
		return FindResult{}, it.Err()
	}
	return FindResult{}, nil
}

func findInColumn(mf *membuf.File, offset int, path *DotPath, pos int) (FindResult, error) {
	node, err := path.At(pos)
	if err != nil {
		return FindResult{}, err
	}
	if node.Type != DotNodeArrayIdx {
		return FindResult{}, newErr(KindNotImplemented, "keyed access %q requires an object field, which is not yet supported", node.Key)
	}
	it, err := NewColumnIterator(mf, offset)
	if err != nil {
		return FindResult{}, err
	}
	if int(node.Idx) >= it.NumElements() {
		return FindResult{}, nil
	}
	raw, err := it.ElementAt(int(node.Idx))
	if err != nil {
		return FindResult{}, err
	}
	// A column element is a leaf by construction (fixed-width scalar);
	// any remaining path segments cannot resolve further.
	if pos+1 < path.Len() {
		return FindResult{}, newErr(KindTypeMismatch, "path continues past a scalar column element")
	}
	return scalarResult(it.ElementType(), raw), nil
}

func resolveSlot(it *ArrayIterator, path *DotPath, pos int) (FindResult, error) {
	last := pos+1 >= path.Len()
	switch it.Type() {
	case FieldArray:
		if last {
			return FindResult{Found: true, Type: FieldArray, ArrayOffset: it.DataOffset()}, nil
		}
		return findInArray(it.File(), it.DataOffset(), path, pos+1)
	case FieldColumn:
		if last {
			return FindResult{Found: true, Type: FieldColumn, ColumnOffset: it.DataOffset()}, nil
		}
		return findInColumn(it.File(), it.DataOffset(), path, pos+1)
	default:
		if !last {
			return FindResult{}, newErr(KindTypeMismatch, "path continues past a scalar field of type %v", it.Type())
		}
		return resolveScalarSlot(it)
	}
}

func resolveScalarSlot(it *ArrayIterator) (FindResult, error) {
	switch it.Type() {
	case FieldNull:
		return FindResult{Found: true, Type: FieldNull, IsNull: true}, nil
	case FieldTrue:
		return FindResult{Found: true, Type: FieldTrue, Bool: true}, nil
	case FieldFalse:
		return FindResult{Found: true, Type: FieldFalse, Bool: false}, nil
	case FieldString:
		s, err := it.StringValue()
		if err != nil {
			return FindResult{}, err
		}
		return FindResult{Found: true, Type: FieldString, String: s}, nil
	case FieldBinary, FieldBinaryCustom:
		mimeID, mimeName, data, err := it.BinaryValue()
		if err != nil {
			return FindResult{}, err
		}
		if it.Type() == FieldBinary {
			mimeName = mimetype.ByID(mimeID)
		}
		return FindResult{Found: true, Type: it.Type(), BinaryData: data, MimeID: mimeID, MimeName: mimeName}, nil
	default:
		raw, err := it.RawValue()
		if err != nil {
			return FindResult{}, err
		}
		r := scalarResult(it.Type(), raw)
		r.Found = true
		return r, nil
	}
}

func scalarResult(ft FieldType, raw []byte) FindResult {
	r := FindResult{Found: true, Type: ft, IsNull: IsNullValue(ft, raw)}
	v := DecodeNumeric(ft, raw)
	switch ft {
	case FieldU8:
		r.Unsigned = uint64(v.(uint8))
	case FieldU16:
		r.Unsigned = uint64(v.(uint16))
	case FieldU32:
		r.Unsigned = uint64(v.(uint32))
	case FieldU64:
		r.Unsigned = v.(uint64)
	case FieldI8:
		r.Signed = int64(v.(int8))
	case FieldI16:
		r.Signed = int64(v.(int16))
	case FieldI32:
		r.Signed = int64(v.(int32))
	case FieldI64:
		r.Signed = v.(int64)
	case FieldFloat:
		r.Float = v.(float32)
	}
	return r
}
