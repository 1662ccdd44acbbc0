package bison

import "testing"

func TestFindNestedArray(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	nestedOffset, err := ins.BeginArray()
	if err != nil {
		t.Fatal(err)
	}
	nestedIns, err := rv.Inserter(nestedOffset)
	if err != nil {
		t.Fatal(err)
	}
	if err := nestedIns.Signed(-9); err != nil {
		t.Fatal(err)
	}
	if err := nestedIns.String("deep"); err != nil {
		t.Fatal(err)
	}
	if err := rv.Commit(); err != nil {
		t.Fatal(err)
	}

	res, err := Find(doc.Reader(), doc.RootOffset(), mustPath(t, "0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Signed != -9 {
		t.Fatalf("Find(0.0) = %+v, want signed -9", res)
	}

	res, err = Find(doc.Reader(), doc.RootOffset(), mustPath(t, "0.1"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.String != "deep" {
		t.Fatalf("Find(0.1) = %+v, want string deep", res)
	}
}

func TestFindColumn(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	colIns, err := ins.BeginColumn(FieldU32, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := colIns.WriteUnsigned(314159); err != nil {
		t.Fatal(err)
	}
	if err := rv.Commit(); err != nil {
		t.Fatal(err)
	}

	res, err := Find(doc.Reader(), doc.RootOffset(), mustPath(t, "0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Unsigned != 314159 {
		t.Fatalf("Find(0.0) on column = %+v, want unsigned 314159", res)
	}
}

func TestFindOutOfRangeReturnsNotFound(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	rv := BeginRevise(doc)
	ins, err := rv.Inserter(rv.RootOffset())
	if err != nil {
		t.Fatal(err)
	}
	if err := ins.Null(); err != nil {
		t.Fatal(err)
	}
	if err := rv.Commit(); err != nil {
		t.Fatal(err)
	}

	res, err := Find(doc.Reader(), doc.RootOffset(), mustPath(t, "5"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Fatalf("Find(5) = %+v, want not found", res)
	}
}

func TestFindEmptyPathReturnsRoot(t *testing.T) {
	doc, err := NewDocument(Key{Type: KeyNoKey})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Find(doc.Reader(), doc.RootOffset(), mustPath(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Type != FieldArray || res.ArrayOffset != doc.RootOffset() {
		t.Fatalf("Find(\"\") = %+v", res)
	}
}
