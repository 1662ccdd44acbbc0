package membuf

import (
	"bytes"
	"testing"
)

func newRW(cap int) *File {
	return Open(New(cap), ReadWrite)
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := newRW(4)
	if err := f.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	f.Rewind()
	got, err := f.Read(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hi" {
		t.Errorf("Read = %q, want %q", got, "hi")
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	f := newRW(4)
	f.Write([]byte("ab"))
	f.Rewind()
	if _, err := f.Peek(1); err != nil {
		t.Fatal(err)
	}
	if f.Tell() != 0 {
		t.Errorf("Peek advanced cursor to %d", f.Tell())
	}
}

func TestSkipGrowsInReadWrite(t *testing.T) {
	f := newRW(1)
	if err := f.Skip(10); err != nil {
		t.Fatal(err)
	}
	if f.Tell() != 10 {
		t.Errorf("Tell = %d, want 10", f.Tell())
	}
}

func TestSkipReadOnlyErrors(t *testing.T) {
	b := New(4)
	f := Open(b, ReadOnly)
	if err := f.Skip(10); err != ErrWriteProtected {
		t.Errorf("Skip on read-only = %v, want ErrWriteProtected", err)
	}
}

func TestVarUintRoundTrip(t *testing.T) {
	f := newRW(1)
	if _, err := f.WriteVarUint(16389); err != nil {
		t.Fatal(err)
	}
	f.Rewind()
	v, err := f.ReadVarUint()
	if err != nil {
		t.Fatal(err)
	}
	if v != 16389 {
		t.Errorf("ReadVarUint = %d, want 16389", v)
	}
}

func TestUpdateVarUintSameWidth(t *testing.T) {
	f := newRW(1)
	f.WriteVarUint(10)
	f.Rewind()
	if err := f.UpdateVarUint(20); err != nil {
		t.Fatal(err)
	}
	f.Rewind()
	v, err := f.ReadVarUint()
	if err != nil {
		t.Fatal(err)
	}
	if v != 20 {
		t.Errorf("after update = %d, want 20", v)
	}
}

func TestUpdateVarUintWiden(t *testing.T) {
	f := newRW(1)
	f.WriteVarUint(10) // 1 byte
	f.Write([]byte("TAIL"))
	f.Rewind()
	if err := f.UpdateVarUint(1 << 40); err != nil { // needs many more bytes
		t.Fatal(err)
	}
	f.Rewind()
	v, err := f.ReadVarUint()
	if err != nil {
		t.Fatal(err)
	}
	if v != 1<<40 {
		t.Errorf("after widen = %d, want %d", v, uint64(1)<<40)
	}
	rest, err := f.Read(4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest, []byte("TAIL")) {
		t.Errorf("tail corrupted after widen: %q", rest)
	}
}

func TestEnsureSpaceReusesZeroPadding(t *testing.T) {
	f := newRW(8)
	f.Write([]byte{1})
	f.WriteZero(4)
	f.Write([]byte{9})
	sizeBefore := f.Size()
	f.Seek(1)
	if err := f.EnsureSpace(4); err != nil {
		t.Fatal(err)
	}
	if f.Size() != sizeBefore {
		t.Errorf("EnsureSpace grew block when zero padding sufficed: size %d -> %d", sizeBefore, f.Size())
	}
	if f.Tell() != 1 {
		t.Errorf("EnsureSpace moved cursor: %d", f.Tell())
	}
}

func TestEnsureSpaceShiftsWhenInsufficientZeros(t *testing.T) {
	f := newRW(8)
	f.Write([]byte{1, 2, 3})
	f.Seek(1)
	if err := f.EnsureSpace(3); err != nil {
		t.Fatal(err)
	}
	if f.Tell() != 1 {
		t.Errorf("cursor moved: %d", f.Tell())
	}
	b, _ := f.Peek(3)
	for _, c := range b {
		if c != 0 {
			t.Errorf("EnsureSpace did not clear reserved window: %v", b)
		}
	}
}

func TestSaveRestorePosition(t *testing.T) {
	f := newRW(8)
	f.Seek(3)
	if err := f.SavePosition(); err != nil {
		t.Fatal(err)
	}
	f.Seek(5)
	if err := f.RestorePosition(); err != nil {
		t.Fatal(err)
	}
	if f.Tell() != 3 {
		t.Errorf("Tell after restore = %d, want 3", f.Tell())
	}
	if err := f.RestorePosition(); err != ErrStackUnderflow {
		t.Errorf("second restore = %v, want ErrStackUnderflow", err)
	}
}

func TestSavePositionOverflow(t *testing.T) {
	f := newRW(8)
	for i := 0; i < savedPosDepth; i++ {
		if err := f.SavePosition(); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if err := f.SavePosition(); err != ErrStackOverflow {
		t.Errorf("overflow save = %v, want ErrStackOverflow", err)
	}
}

func TestBitMode(t *testing.T) {
	f := newRW(8)
	if err := f.BeginBitMode(); err != nil {
		t.Fatal(err)
	}
	bits := []bool{true, false, true, true, false, false, true, false, true}
	for _, bit := range bits {
		if err := f.WriteBit(bit); err != nil {
			t.Fatal(err)
		}
	}
	n, err := f.EndBitMode()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("EndBitMode bytes = %d, want 2", n)
	}
	f.Rewind()
	f.bitMode = true
	for i, want := range bits {
		got, err := f.ReadBit()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("bit %d = %v, want %v", i, got, want)
		}
	}
}

func TestDup(t *testing.T) {
	f := newRW(4)
	f.Write([]byte("ab"))
	f.Seek(1)
	d := Dup(f)
	if d.Tell() != 1 {
		t.Errorf("Dup position = %d, want 1", d.Tell())
	}
	d.Seek(0)
	if f.Tell() != 1 {
		t.Error("Dup cursor is not independent of source")
	}
}
