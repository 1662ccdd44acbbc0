package membuf

import "testing"

func TestBlockWriteAndResize(t *testing.T) {
	b := New(4)
	if err := b.Write(0, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if b.Size() != 3 {
		t.Errorf("size = %d, want 3", b.Size())
	}
	b.ResizeZero(8)
	if got := b.Bytes(); len(got) != 8 || got[3] != 0 || got[7] != 0 {
		t.Errorf("ResizeZero did not zero-fill tail: %v", got)
	}
}

func TestBlockMoveRight(t *testing.T) {
	b, err := NewWithSize(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	b.Write(0, []byte{1, 2, 3, 4})
	if err := b.MoveRight(2, 2); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 0, 0, 3, 4}
	got := b.Bytes()
	if len(got) != len(want) {
		t.Fatalf("size after MoveRight = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, want %d (%v)", i, got[i], want[i], got)
		}
	}
}

func TestBlockMoveLeft(t *testing.T) {
	b, err := NewWithSize(8, 6)
	if err != nil {
		t.Fatal(err)
	}
	b.Write(0, []byte{1, 2, 0, 0, 3, 4})
	if err := b.MoveLeft(4, 2); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4}
	got := b.Bytes()
	if len(got) != len(want) {
		t.Fatalf("size after MoveLeft = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBlockShrink(t *testing.T) {
	b := New(64)
	b.Write(0, []byte{9, 9})
	b.Shrink()
	if b.Capacity() != 2 {
		t.Errorf("Capacity after Shrink = %d, want 2", b.Capacity())
	}
}

func TestBlockClone(t *testing.T) {
	b := New(4)
	b.Write(0, []byte{1, 2})
	dup := b.Clone()
	dup.Write(0, []byte{9, 9})
	if b.Bytes()[0] == 9 {
		t.Error("Clone shares storage with original")
	}
}
