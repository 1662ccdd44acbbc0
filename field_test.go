package bison

import (
	"math"
	"testing"
)

func TestUnsignedWidthForExcludesSentinels(t *testing.T) {
	cases := []struct {
		v    uint64
		want FieldType
	}{
		{0, FieldU8},
		{math.MaxUint8 - 1, FieldU8},
		{math.MaxUint8, FieldU16}, // 0xFF is u8's null sentinel, not representable as u8
		{math.MaxUint16 - 1, FieldU16},
		{math.MaxUint16, FieldU32},
		{math.MaxUint32 - 1, FieldU32},
		{math.MaxUint32, FieldU64},
	}
	for _, c := range cases {
		if got := UnsignedWidthFor(c.v); got != c.want {
			t.Errorf("UnsignedWidthFor(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSignedWidthForExcludesSentinels(t *testing.T) {
	cases := []struct {
		v    int64
		want FieldType
	}{
		{0, FieldI8},
		{math.MaxInt8, FieldI8},
		{math.MinInt8 + 1, FieldI8},
		{math.MinInt8, FieldI16}, // INT8_MIN is i8's null sentinel
		{math.MaxInt16, FieldI16},
		{math.MinInt16, FieldI32},
		{math.MaxInt32, FieldI32},
		{math.MinInt32, FieldI64},
	}
	for _, c := range cases {
		if got := SignedWidthFor(c.v); got != c.want {
			t.Errorf("SignedWidthFor(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestFieldTypeValueSizeAndFixedWidth(t *testing.T) {
	fixed := []FieldType{FieldNull, FieldTrue, FieldFalse, FieldU8, FieldU16, FieldU32, FieldU64,
		FieldI8, FieldI16, FieldI32, FieldI64, FieldFloat}
	for _, ft := range fixed {
		if !ft.IsFixedWidth() {
			t.Errorf("%v.IsFixedWidth() = false, want true", ft)
		}
	}
	variable := []FieldType{FieldString, FieldBinary, FieldBinaryCustom, FieldArray, FieldColumn}
	for _, ft := range variable {
		if ft.IsFixedWidth() {
			t.Errorf("%v.IsFixedWidth() = true, want false", ft)
		}
	}
	if FieldU32.ValueSize() != 4 || FieldI64.ValueSize() != 8 || FieldNull.ValueSize() != 0 {
		t.Fatal("unexpected ValueSize results")
	}
}

func TestNullFloat32RoundTrips(t *testing.T) {
	v := nullFloat32()
	if !isNullFloat32(v) {
		t.Fatal("nullFloat32() should be recognized by isNullFloat32")
	}
	if isNullFloat32(1.5) {
		t.Fatal("1.5 misidentified as float32 null sentinel")
	}
}
