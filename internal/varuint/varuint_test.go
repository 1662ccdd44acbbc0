package varuint

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 42, 126, 127, 128, 129, 255, 256,
		16383, 16384, 16389,
		1 << 20, 1 << 34, 1 << 48, 1 << 62,
		(1 << 63) - 1,
	}
	for _, v := range values {
		enc := Encode(nil, v)
		got, n, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip mismatch: encoded %d, decoded %d", v, got)
		}
		if n != len(enc) {
			t.Errorf("Decode consumed %d bytes, encoding is %d bytes", n, len(enc))
		}
		if n != RequiredBlocks(v) {
			t.Errorf("RequiredBlocks(%d)=%d, encoding used %d", v, RequiredBlocks(v), n)
		}
	}
}

// Exact byte counts at the documented block boundaries. Note: spec.md's
// scenario table names 16389 as a 2-byte encoding, but 16389 > 16383 (the
// largest value representable in 2 seven-bit blocks per the
// required_blocks table carried over from original_source/ varuint.h), so
// any big-endian 7-bit-chunked encoding needs 3 blocks for it. We treat
// that as a typo in the distilled spec (likely for 16383) and assert the
// mathematically consistent boundary instead; see DESIGN.md.
func TestExactByteCounts(t *testing.T) {
	cases := []struct {
		v     uint64
		nbyte int
	}{
		{0, 1},
		{42, 1},
		{127, 1},
		{128, 2},
		{256, 2},
		{16383, 2},
		{16384, 3},
	}
	for _, c := range cases {
		enc := Encode(nil, c.v)
		if len(enc) != c.nbyte {
			t.Errorf("Encode(%d) produced %d bytes, want %d", c.v, len(enc), c.nbyte)
		}
	}
}

func TestHighBitPattern(t *testing.T) {
	enc := Encode(nil, 16384)
	for i, b := range enc {
		last := i == len(enc)-1
		hasBit := b&0x80 != 0
		if hasBit == last {
			t.Errorf("byte %d: continuation bit %v, want %v (last=%v)", i, hasBit, !last, last)
		}
	}
}

func TestEncodeInto(t *testing.T) {
	buf := make([]byte, MaxBlocks)
	n := EncodeInto(buf, 16384)
	want := Encode(nil, 16384)
	if !bytes.Equal(buf[:n], want) {
		t.Errorf("EncodeInto = %x, want %x", buf[:n], want)
	}
}

func TestDecodeTruncated(t *testing.T) {
	enc := Encode(nil, 16384)
	_, _, err := Decode(enc[:len(enc)-1])
	if err != ErrTruncated {
		t.Errorf("Decode(truncated) = %v, want ErrTruncated", err)
	}
}

func TestPeek(t *testing.T) {
	enc := Encode(nil, 999999)
	if got := Peek(enc); got != len(enc) {
		t.Errorf("Peek = %d, want %d", got, len(enc))
	}
	if got := Peek(enc[:len(enc)-1]); got != 0 {
		t.Errorf("Peek(truncated) = %d, want 0", got)
	}
}
