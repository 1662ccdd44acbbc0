package bison

import "github.com/bisondb/bison/internal/membuf"

// ReviseSession is a clone-mutate-commit transaction against a Document.
// BeginRevise clones the document's committed block onto a private,
// writable cursor; Commit publishes the clone (after bumping the
// revision counter and applying any requested cleanup) and releases the
// writer lock, while Abort discards the clone and releases the lock
// without touching the document at all. Exactly one of Commit or Abort
// must be called — abort is cooperative, not automatic, mirroring the
// revision API a session is built on.
type ReviseSession struct {
	doc  *Document
	hdr  *header
	blk  *membuf.Block
	mf   *membuf.File
	opts ReviseOptions
	done bool

	// payloadOffset tracks the root array's current offset, which only
	// ever moves if bumpRevision's widening shifts it at Commit time;
	// every navigation helper reads this instead of hdr.payloadOffset
	// directly so Pack (which runs after the revision bump) sees the
	// post-shift layout.
	payloadOffset int
}

// BeginRevise acquires doc's single-writer lock and opens a session over
// a private clone of its committed block. It blocks until any other
// in-flight session on doc has called Commit or Abort.
func BeginRevise(doc *Document, opts ...ReviseOption) *ReviseSession {
	doc.wlock.Lock()
	hdr := doc.hdr.Load()
	clone := doc.block.Load().Clone()
	o := defaultReviseOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ReviseSession{
		doc:           doc,
		hdr:           hdr,
		blk:           clone,
		mf:            membuf.Open(clone, membuf.ReadWrite),
		opts:          o,
		payloadOffset: hdr.payloadOffset,
	}
}

// File returns the session's private writable cursor.
func (rv *ReviseSession) File() *membuf.File { return rv.mf }

// RootOffset returns the offset of the root array's leading '['.
func (rv *ReviseSession) RootOffset() int { return rv.payloadOffset }

// Inserter opens an Inserter over the array at offset within this
// session's private clone.
func (rv *ReviseSession) Inserter(offset int) (*Inserter, error) {
	return NewInserter(rv.mf, offset)
}

// Abort discards the session's clone, leaving the document's committed
// state untouched, and releases the writer lock. Safe to call multiple
// times; only the first call has effect.
func (rv *ReviseSession) Abort() {
	if rv.done {
		return
	}
	rv.done = true
	rv.doc.wlock.Unlock()
}

// Commit bumps the revision counter in place (NoKey documents carry no
// revision and are left alone), applies the session's cleanup Mode, and
// publishes the clone as the document's new committed block. It then
// releases the writer lock and notifies listeners. Calling Commit after
// Abort, or twice, returns an error without side effects.
func (rv *ReviseSession) Commit() error {
	if rv.done {
		return newErr(KindIllegalState, "revise session already ended")
	}
	var newRevision uint64
	if rv.hdr.key.Type != KeyNoKey {
		var payloadShift int
		var err error
		newRevision, payloadShift, err = rv.bumpRevision()
		if err != nil {
			rv.done = true
			rv.doc.wlock.Unlock()
			return err
		}
		rv.payloadOffset += payloadShift
	}
	if rv.opts.mode&Compact != 0 {
		if err := rv.Pack(); err != nil {
			rv.done = true
			rv.doc.wlock.Unlock()
			return err
		}
	}
	if rv.opts.mode&Shrink != 0 {
		rv.blk.Shrink()
	}

	newHdr := *rv.hdr
	newHdr.payloadOffset = rv.payloadOffset
	if rv.hdr.key.Type != KeyNoKey {
		newHdr.revision = newRevision
	}

	rv.done = true
	rv.doc.block.Store(rv.blk)
	rv.doc.hdr.Store(&newHdr)
	rv.doc.wlock.Unlock()
	rv.doc.notify(EventRevised)
	return nil
}

// bumpRevision rewrites the revision varuint in place (widening via
// EnsureSpace if incrementing pushed it into a wider varuint block
// count), mirroring the original implementation's peek-increment-update
// sequence. It returns the new revision and the number of bytes, if any,
// the widening inserted before the payload offset recorded at session
// start.
func (rv *ReviseSession) bumpRevision() (uint64, int, error) {
	if err := rv.mf.Seek(rv.hdr.revisionOffset); err != nil {
		return 0, 0, err
	}
	_, oldLen, err := rv.mf.PeekVarUint()
	if err != nil {
		return 0, 0, err
	}
	next := rv.hdr.revision + 1
	if err := rv.mf.UpdateVarUint(next); err != nil {
		return 0, 0, err
	}
	newLen := rv.mf.Tell() - rv.hdr.revisionOffset
	return next, newLen - oldLen, nil
}

// ReviseFind is a scoped handle over a path resolved against a
// ReviseSession's in-progress clone, mirroring the original
// find_open/find_close pair (§4.8): resolution happens once at Open,
// and the handle is marked unusable at Close so a caller can't
// accidentally read a stale Result after the session has moved on.
type ReviseFind struct {
	Result FindResult
	open   bool
}

// FindOpen resolves path against the session's current clone and
// returns a handle over the result. The handle must be released with
// Close.
func (rv *ReviseSession) FindOpen(path *DotPath) (*ReviseFind, error) {
	res, err := Find(rv.mf, rv.payloadOffset, path)
	if err != nil {
		return nil, err
	}
	return &ReviseFind{Result: res, open: true}, nil
}

// Close releases rf. The original's find_close frees resources the C
// struct owned; here it only guards against reuse after release, kept
// for API symmetry with FindOpen.
func (rf *ReviseFind) Close() error {
	if !rf.open {
		return newErr(KindIllegalState, "find handle already closed")
	}
	rf.open = false
	return nil
}

// navigate walks path against the array rooted at offset within mf,
// exactly as find.go's findInArray/resolveSlot do, but surfaces the
// resolved field's raw span (and, for a column element, the column
// iterator and element index) instead of a decoded FindResult — the
// shape Remove and Update need to mutate in place rather than read.
func navigate(mf *membuf.File, offset int, path *DotPath, pos int) (slotHeader, *ColumnIterator, int, error) {
	node, err := path.At(pos)
	if err != nil {
		return slotHeader{}, nil, 0, err
	}
	if node.Type != DotNodeArrayIdx {
		return slotHeader{}, nil, 0, newErr(KindNotImplemented, "keyed access %q requires an object field, which is not yet supported", node.Key)
	}

	it, err := NewArrayIterator(mf, offset)
	if err != nil {
		return slotHeader{}, nil, 0, err
	}
	var idx uint32
	for it.Next() {
		if idx != node.Idx {
			idx++
			continue
		}
		last := pos+1 >= path.Len()
		switch it.Type() {
		case FieldArray:
			if last {
				return it.current, nil, 0, nil
			}
			return navigate(it.File(), it.DataOffset(), path, pos+1)
		case FieldColumn:
			if last {
				return it.current, nil, 0, nil
			}
			colNode, err := path.At(pos + 1)
			if err != nil {
				return slotHeader{}, nil, 0, err
			}
			if colNode.Type != DotNodeArrayIdx {
				return slotHeader{}, nil, 0, newErr(KindNotImplemented, "keyed access %q requires an object field, which is not yet supported", colNode.Key)
			}
			if pos+2 < path.Len() {
				return slotHeader{}, nil, 0, newErr(KindTypeMismatch, "path continues past a scalar column element")
			}
			colIt, err := NewColumnIterator(it.File(), it.DataOffset())
			if err != nil {
				return slotHeader{}, nil, 0, err
			}
			if int(colNode.Idx) >= colIt.NumElements() {
				return slotHeader{}, nil, 0, newErr(KindNotFound, "column index %d not found", colNode.Idx)
			}
			return slotHeader{}, colIt, int(colNode.Idx), nil
		default:
			if last {
				return it.current, nil, 0, nil
			}
			return slotHeader{}, nil, 0, newErr(KindTypeMismatch, "path continues past a scalar field of type %v", it.Type())
		}
	}
	if it.Err() != nil {
		return slotHeader{}, nil, 0, it.Err()
	}
	return slotHeader{}, nil, 0, newErr(KindNotFound, "path index %d not found", node.Idx)
}

// replaceSpan overwrites mf[start:end) with newBytes, growing or
// shrinking the block as needed when len(newBytes) differs from the
// span it replaces. When the lengths match this is a plain in-place
// write preserving every neighboring offset, exactly the fast path
// §4.8's Update algorithm calls for when a field's type (and therefore
// width) is unchanged.
func replaceSpan(mf *membuf.File, start, end int, newBytes []byte) error {
	oldLen := end - start
	newLen := len(newBytes)
	switch {
	case newLen == oldLen:
		if err := mf.Seek(start); err != nil {
			return err
		}
		return mf.Write(newBytes)
	case newLen > oldLen:
		if err := mf.Seek(end); err != nil {
			return err
		}
		if err := mf.MoveRight(newLen - oldLen); err != nil {
			return err
		}
	default:
		if err := mf.Seek(end); err != nil {
			return err
		}
		if err := mf.MoveLeft(oldLen - newLen); err != nil {
			return err
		}
	}
	if err := mf.Seek(start); err != nil {
		return err
	}
	return mf.Write(newBytes)
}

// Remove deletes the element path addresses. It zero-fills the field's
// bytes in place rather than immediately shifting the container: an
// array body already treats runs of zero bytes as reserved filler that
// iteration skips transparently (slot.go), so no shift is needed until
// a later Pack reclaims the space. A path resolving to a single column
// element is refused — columns are fixed-capacity and have no
// analogous "reserved element" state; update it instead.
func (rv *ReviseSession) Remove(path *DotPath) error {
	if path.IsEmpty() {
		return newErr(KindIllegalArg, "remove path must address a concrete field")
	}
	slot, colIt, _, err := navigate(rv.mf, rv.payloadOffset, path, 0)
	if err != nil {
		return err
	}
	if colIt != nil {
		return newErr(KindNotImplemented, "removing a single column element is not supported; update it instead")
	}
	if err := rv.mf.Seek(slot.Start); err != nil {
		return err
	}
	return rv.mf.WriteZero(slot.End - slot.Start)
}

// updateScalar implements the array side of §4.8's Update algorithm:
// locate the field path addresses and splice newBytes in over its
// current span via replaceSpan, which degrades to a plain in-place
// write (preserving the marker) whenever the new encoding happens to be
// exactly as wide as what it replaces.
func (rv *ReviseSession) updateScalar(path *DotPath, newBytes []byte) error {
	slot, colIt, _, err := navigate(rv.mf, rv.payloadOffset, path, 0)
	if err != nil {
		return err
	}
	if colIt != nil {
		return newErr(KindTypeMismatch, "path addresses a column element; use UpdateColumn* instead")
	}
	return replaceSpan(rv.mf, slot.Start, slot.End, newBytes)
}

// UpdateNull overwrites the field path addresses with a null field.
func (rv *ReviseSession) UpdateNull(path *DotPath) error {
	return rv.updateScalar(path, encodeNullField())
}

// UpdateBool overwrites the field path addresses with a boolean field.
func (rv *ReviseSession) UpdateBool(path *DotPath, v bool) error {
	return rv.updateScalar(path, encodeBoolField(v))
}

// UpdateUnsigned overwrites the field path addresses, re-promoting v to
// its narrowest unsigned width exactly as Inserter.Unsigned does.
func (rv *ReviseSession) UpdateUnsigned(path *DotPath, v uint64) error {
	return rv.updateScalar(path, encodeUnsignedField(v))
}

// UpdateSigned overwrites the field path addresses, re-promoting v to
// its narrowest signed width exactly as Inserter.Signed does.
func (rv *ReviseSession) UpdateSigned(path *DotPath, v int64) error {
	return rv.updateScalar(path, encodeSignedField(v))
}

// UpdateFloat overwrites the field path addresses with a float32 field.
func (rv *ReviseSession) UpdateFloat(path *DotPath, v float32) error {
	return rv.updateScalar(path, encodeFloatField(v))
}

// UpdateString overwrites the field path addresses with a string field.
func (rv *ReviseSession) UpdateString(path *DotPath, v string) error {
	return rv.updateScalar(path, encodeStringField(v))
}

// UpdateBinary overwrites the field path addresses with a binary field
// tagged by mimetype registry id.
func (rv *ReviseSession) UpdateBinary(path *DotPath, mimeID uint32, data []byte) error {
	return rv.updateScalar(path, encodeBinaryField(mimeID, data))
}

// UpdateBinaryCustom overwrites the field path addresses with a binary
// field tagged by an inline MIME type name.
func (rv *ReviseSession) UpdateBinaryCustom(path *DotPath, mimeName string, data []byte) error {
	return rv.updateScalar(path, encodeBinaryCustomField(mimeName, data))
}

// updateColumn locates the column element path addresses (the final two
// segments must be an array index selecting the column field, then a
// column index selecting the element) and writes v into it, refusing
// with KindTypeMismatch if classify rejects the column's fixed element
// type or if v needs a wider element type than the column has — the
// column side of §4.8's Update algorithm, which unlike the
// array side never permits a width change.
func (rv *ReviseSession) updateColumn(path *DotPath, classify func(FieldType) bool, v interface{}) error {
	_, colIt, idx, err := navigate(rv.mf, rv.payloadOffset, path, 0)
	if err != nil {
		return err
	}
	if colIt == nil {
		return newErr(KindTypeMismatch, "path does not address a column element")
	}
	ft := colIt.ElementType()
	if !classify(ft) {
		return newErr(KindTypeMismatch, "column element type %v cannot be widened", ft)
	}
	natural := ft
	switch n := v.(type) {
	case uint64:
		natural = UnsignedWidthFor(n)
	case int64:
		natural = SignedWidthFor(n)
	}
	if natural.ValueSize() > ft.ValueSize() {
		return newErr(KindTypeMismatch, "value needs %v, column element type %v cannot be widened", natural, ft)
	}
	off, err := colIt.ElementOffset(idx)
	if err != nil {
		return err
	}
	buf := make([]byte, ft.ValueSize())
	EncodeNumeric(ft, buf, v)
	if err := rv.mf.Seek(off); err != nil {
		return err
	}
	return rv.mf.Write(buf)
}

// UpdateColumnUnsigned overwrites an element of an unsigned-typed column.
func (rv *ReviseSession) UpdateColumnUnsigned(path *DotPath, v uint64) error {
	return rv.updateColumn(path, FieldType.IsUnsigned, v)
}

// UpdateColumnSigned overwrites an element of a signed-typed column.
func (rv *ReviseSession) UpdateColumnSigned(path *DotPath, v int64) error {
	return rv.updateColumn(path, FieldType.IsSigned, v)
}

// UpdateColumnFloat overwrites an element of a float32-typed column.
func (rv *ReviseSession) UpdateColumnFloat(path *DotPath, v float32) error {
	return rv.updateColumn(path, func(ft FieldType) bool { return ft == FieldFloat }, v)
}

// Pack collapses every run of reserved (zero) filler bytes out of the
// session's root array, recursing into nested arrays, so that no
// interior zero byte remains anywhere in the container — the testable
// property §8 calls for after a pack. Columns carry no reserved filler
// (their unused slots are null-sentinel-valued elements, not reserved
// bytes; see §3), so there is nothing to collapse inside one.
func (rv *ReviseSession) Pack() error {
	return packArray(rv.mf, rv.payloadOffset)
}

func packArray(mf *membuf.File, offset int) error {
	if err := mf.Seek(offset); err != nil {
		return err
	}
	marker, err := mf.Read(1)
	if err != nil {
		return err
	}
	if marker[0] != markerArrayBegin {
		return newErr(KindMarkerMapping, "offset %d is not an array ('[' expected, got 0x%02x)", offset, marker[0])
	}
	for {
		b, err := mf.Peek(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case markerArrayEnd:
			return mf.Skip(1)
		case markerReserved:
			start := mf.Tell()
			for {
				nb, err := mf.Peek(1)
				if err != nil {
					return err
				}
				if nb[0] != markerReserved {
					break
				}
				if err := mf.Skip(1); err != nil {
					return err
				}
			}
			if err := mf.MoveLeft(mf.Tell() - start); err != nil {
				return err
			}
			// MoveLeft operates on the block only; the cursor must be
			// walked back to where the collapsed run used to start so the
			// next Peek sees the byte the shift just slid into place.
			if err := mf.Seek(start); err != nil {
				return err
			}
		case markerArrayBegin:
			if err := packArray(mf, mf.Tell()); err != nil {
				return err
			}
		default:
			if _, err := readSlot(mf); err != nil {
				return err
			}
		}
	}
}
