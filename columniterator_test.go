package bison

import "testing"

func TestColumnIteratorWalksFixedWidthElements(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	colIns, err := ins.BeginColumn(FieldU16, 3)
	if err != nil {
		t.Fatal(err)
	}
	colOffset := ins.End() - colInsertedLen(FieldU16, 3)
	for _, v := range []uint16{10, 20, 30} {
		if err := colIns.WriteUnsigned(uint64(v)); err != nil {
			t.Fatal(err)
		}
	}
	if colIns.NumElements() != 3 {
		t.Fatalf("NumElements() = %d, want 3", colIns.NumElements())
	}
	if err := rv.Commit(); err != nil {
		t.Fatal(err)
	}

	it, err := NewColumnIterator(doc.Reader(), colOffset)
	if err != nil {
		t.Fatal(err)
	}
	if it.ElementType() != FieldU16 {
		t.Fatalf("ElementType() = %v, want u16", it.ElementType())
	}
	if it.Capacity() != 3 || it.NumElements() != 3 {
		t.Fatalf("Capacity/NumElements = %d/%d, want 3/3", it.Capacity(), it.NumElements())
	}
	var got []uint16
	for it.Next() {
		v, err := it.Value()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v.(uint16))
	}
	if len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("got = %v, want [10 20 30]", got)
	}
}

func TestColumnInserterRejectsWriteBeyondCapacity(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	defer rv.Abort()
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	colIns, err := ins.BeginColumn(FieldU8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := colIns.WriteUnsigned(1); err != nil {
		t.Fatal(err)
	}
	if err := colIns.WriteUnsigned(2); err == nil {
		t.Fatal("expected KindOutOfBounds writing past capacity")
	}
}

func TestColumnInserterRejectsTypeMismatch(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	defer rv.Abort()
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	colIns, err := ins.BeginColumn(FieldU8, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := colIns.WriteSigned(-1); err == nil {
		t.Fatal("expected KindTypeMismatch writing a signed value to an unsigned column")
	}
}

func TestBeginColumnRejectsVariableWidthElement(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	defer rv.Abort()
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ins.BeginColumn(FieldString, 2); err == nil {
		t.Fatal("expected error for non-fixed-width column element type")
	}
}

// colInsertedLen returns the total byte length of a column body
// written by Inserter.BeginColumn for the given element type and
// capacity, so tests can recover the offset BeginColumn returned
// implicitly (via the inserter's new end) without hand-decoding it.
func colInsertedLen(elemType FieldType, capacity int) int {
	return 1 + 1 + 4 + 4 + elemType.ValueSize()*capacity + 1
}
