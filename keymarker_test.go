package bison

import (
	"testing"

	"github.com/bisondb/bison/internal/membuf"
)

func TestHeaderRoundTripNoKey(t *testing.T) {
	block := membuf.New(32)
	mf := membuf.Open(block, membuf.ReadWrite)
	if err := writeHeader(mf, Key{Type: KeyNoKey}); err != nil {
		t.Fatal(err)
	}
	if err := writeRevision(mf, KeyNoKey, 0); err != nil {
		t.Fatal(err)
	}

	rf := membuf.Open(block, membuf.ReadOnly)
	hdr, err := readHeader(rf)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.key.Type != KeyNoKey {
		t.Fatalf("key type = %v, want NoKey", hdr.key.Type)
	}
	if hdr.revisionOffset != -1 {
		t.Fatalf("revisionOffset = %d, want -1 for NoKey", hdr.revisionOffset)
	}
	if hdr.payloadOffset != 1 {
		t.Fatalf("payloadOffset = %d, want 1", hdr.payloadOffset)
	}
}

func TestHeaderRoundTripAutoKey(t *testing.T) {
	block := membuf.New(32)
	mf := membuf.Open(block, membuf.ReadWrite)
	key := Key{Type: KeyAutoKey, Unsigned: 42}
	if err := writeHeader(mf, key); err != nil {
		t.Fatal(err)
	}
	if err := writeRevision(mf, key.Type, 7); err != nil {
		t.Fatal(err)
	}

	rf := membuf.Open(block, membuf.ReadOnly)
	hdr, err := readHeader(rf)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.key.Type != KeyAutoKey || hdr.key.Unsigned != 42 {
		t.Fatalf("key = %+v, want AutoKey/42", hdr.key)
	}
	if hdr.revision != 7 {
		t.Fatalf("revision = %d, want 7", hdr.revision)
	}
	if hdr.revisionOffset < 0 {
		t.Fatalf("revisionOffset should be set for AutoKey")
	}
}

func TestHeaderRoundTripSKey(t *testing.T) {
	block := membuf.New(32)
	mf := membuf.Open(block, membuf.ReadWrite)
	key := Key{Type: KeySKey, StringKey: "order-1234"}
	if err := writeHeader(mf, key); err != nil {
		t.Fatal(err)
	}
	if err := writeRevision(mf, key.Type, 0); err != nil {
		t.Fatal(err)
	}

	rf := membuf.Open(block, membuf.ReadOnly)
	hdr, err := readHeader(rf)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.key.Type != KeySKey || hdr.key.StringKey != "order-1234" {
		t.Fatalf("key = %+v, want SKey/order-1234", hdr.key)
	}
}

func TestHeaderRejectsUnknownMarker(t *testing.T) {
	block := membuf.New(8)
	mf := membuf.Open(block, membuf.ReadWrite)
	if err := mf.Write([]byte{0x99}); err != nil {
		t.Fatal(err)
	}
	rf := membuf.Open(block, membuf.ReadOnly)
	if _, err := readHeader(rf); err == nil {
		t.Fatal("expected error for unrecognized key marker")
	}
}

func TestKeyTypeMarkerMapping(t *testing.T) {
	cases := []struct {
		kt KeyType
		b  byte
	}{
		{KeyNoKey, '?'},
		{KeyAutoKey, '*'},
		{KeyUKey, '+'},
		{KeyIKey, '-'},
		{KeySKey, '!'},
	}
	for _, c := range cases {
		if got := c.kt.marker(); got != c.b {
			t.Errorf("%v.marker() = %q, want %q", c.kt, got, c.b)
		}
		kt, ok := keyTypeFromMarker(c.b)
		if !ok || kt != c.kt {
			t.Errorf("keyTypeFromMarker(%q) = %v,%v want %v,true", c.b, kt, ok, c.kt)
		}
	}
}
