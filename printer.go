package bison

import (
	"strconv"
	"strings"

	"github.com/chenzhuoyu/base64x"

	"github.com/bisondb/bison/internal/membuf"
	"github.com/bisondb/bison/mimetype"
)

// Printer is the pluggable output vtable a document is rendered through.
// JSONPrinter is the only implementation shipped, but callers needing a
// different wire format (e.g. a debug dump annotating byte offsets)
// implement the same interface, mirroring the original formatter vtable.
type Printer interface {
	DocumentBegin(sb *strings.Builder)
	DocumentEnd(sb *strings.Builder)
	HeaderBegin(sb *strings.Builder)
	HeaderContents(sb *strings.Builder, key Key, revision uint64)
	HeaderEnd(sb *strings.Builder)
	PayloadBegin(sb *strings.Builder)
	PayloadEnd(sb *strings.Builder)
	ArrayBegin(sb *strings.Builder)
	ArrayEnd(sb *strings.Builder)
	Null(sb *strings.Builder)
	Bool(sb *strings.Builder, v bool)
	Unsigned(sb *strings.Builder, v uint64)
	Signed(sb *strings.Builder, v int64)
	Float(sb *strings.Builder, v float32)
	String(sb *strings.Builder, v string)
	Binary(sb *strings.Builder, mimeType string, data []byte)
	Comma(sb *strings.Builder)
}

// JSONPrinter renders a document as strict JSON, embedding the key and
// revision under a "meta" object and the root array under "doc", with
// binary fields base64-encoded (SIMD-accelerated via base64x) and
// annotated with their resolved MIME type string.
type JSONPrinter struct {
	// Strict, when true (the default), quotes the "meta"/"doc" object
	// keys; when false it emits them bare, matching the original
	// formatter's non-strict mode.
	Strict bool
}

func NewJSONPrinter() *JSONPrinter { return &JSONPrinter{Strict: true} }

func (p *JSONPrinter) field(name string) string {
	if p.Strict {
		return `"` + name + `":`
	}
	return name + ":"
}

func (p *JSONPrinter) DocumentBegin(sb *strings.Builder) { sb.WriteByte('{') }
func (p *JSONPrinter) DocumentEnd(sb *strings.Builder)   { sb.WriteByte('}') }

func (p *JSONPrinter) HeaderBegin(sb *strings.Builder) {
	sb.WriteString(p.field("meta"))
	sb.WriteByte('{')
}

func (p *JSONPrinter) HeaderContents(sb *strings.Builder, key Key, revision uint64) {
	sb.WriteString(p.field("_id"))
	switch key.Type {
	case KeyNoKey:
		sb.WriteString("null")
	case KeyAutoKey, KeyUKey:
		sb.WriteString(strconv.FormatUint(key.Unsigned, 10))
	case KeyIKey:
		sb.WriteString(strconv.FormatInt(key.Signed, 10))
	case KeySKey:
		sb.WriteByte('"')
		sb.WriteString(key.StringKey)
		sb.WriteByte('"')
	}
	if key.Type != KeyNoKey {
		sb.WriteByte(',')
		sb.WriteString(p.field("_rev"))
		sb.WriteString(strconv.FormatUint(revision, 10))
	}
}

func (p *JSONPrinter) HeaderEnd(sb *strings.Builder) { sb.WriteByte('}') }

func (p *JSONPrinter) PayloadBegin(sb *strings.Builder) { sb.WriteString(p.field("doc")) }
func (p *JSONPrinter) PayloadEnd(sb *strings.Builder)   {}

func (p *JSONPrinter) ArrayBegin(sb *strings.Builder) { sb.WriteByte('[') }
func (p *JSONPrinter) ArrayEnd(sb *strings.Builder)   { sb.WriteByte(']') }

func (p *JSONPrinter) Null(sb *strings.Builder) { sb.WriteString("null") }

func (p *JSONPrinter) Bool(sb *strings.Builder, v bool) {
	if v {
		sb.WriteString("true")
	} else {
		sb.WriteString("false")
	}
}

func (p *JSONPrinter) Unsigned(sb *strings.Builder, v uint64) {
	sb.WriteString(strconv.FormatUint(v, 10))
}

func (p *JSONPrinter) Signed(sb *strings.Builder, v int64) {
	sb.WriteString(strconv.FormatInt(v, 10))
}

func (p *JSONPrinter) Float(sb *strings.Builder, v float32) {
	sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

func (p *JSONPrinter) String(sb *strings.Builder, v string) {
	sb.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

func (p *JSONPrinter) Binary(sb *strings.Builder, mimeType string, data []byte) {
	sb.WriteByte('{')
	sb.WriteString(p.field("type"))
	sb.WriteByte('"')
	sb.WriteString(mimeType)
	sb.WriteByte('"')
	sb.WriteByte(',')
	sb.WriteString(p.field("encoding"))
	sb.WriteString(`"base64"`)
	sb.WriteByte(',')
	sb.WriteString(p.field("binary-string"))
	sb.WriteByte('"')
	sb.WriteString(base64x.StdEncoding.EncodeToString(data))
	sb.WriteByte('"')
	sb.WriteByte('}')
}

func (p *JSONPrinter) Comma(sb *strings.Builder) { sb.WriteByte(',') }

// Print renders doc's current committed state through p, e.g.
// Print(doc, NewJSONPrinter()).
func Print(doc *Document, p Printer) (string, error) {
	var sb strings.Builder
	mf := doc.Reader()
	hdr := doc.hdr.Load()

	p.DocumentBegin(&sb)
	p.HeaderBegin(&sb)
	p.HeaderContents(&sb, hdr.key, hdr.revision)
	p.HeaderEnd(&sb)
	sb.WriteByte(',')
	p.PayloadBegin(&sb)
	if err := printArray(&sb, p, mf, hdr.payloadOffset); err != nil {
		return "", err
	}
	p.PayloadEnd(&sb)
	p.DocumentEnd(&sb)
	return sb.String(), nil
}

func printArray(sb *strings.Builder, p Printer, mf *membuf.File, offset int) error {
	it, err := NewArrayIterator(mf, offset)
	if err != nil {
		return err
	}
	p.ArrayBegin(sb)
	first := true
	for it.Next() {
		if !first {
			p.Comma(sb)
		}
		first = false
		if err := printSlot(sb, p, it); err != nil {
			return err
		}
	}
	if it.Err() != nil {
		return it.Err()
	}
	p.ArrayEnd(sb)
	return nil
}

func printColumn(sb *strings.Builder, p Printer, mf *membuf.File, offset int) error {
	it, err := NewColumnIterator(mf, offset)
	if err != nil {
		return err
	}
	p.ArrayBegin(sb)
	first := true
	for it.Next() {
		if !first {
			p.Comma(sb)
		}
		first = false
		raw, err := it.Raw()
		if err != nil {
			return err
		}
		printScalar(sb, p, it.ElementType(), raw)
	}
	p.ArrayEnd(sb)
	return nil
}

func printSlot(sb *strings.Builder, p Printer, it *ArrayIterator) error {
	switch it.Type() {
	case FieldNull:
		p.Null(sb)
	case FieldTrue:
		p.Bool(sb, true)
	case FieldFalse:
		p.Bool(sb, false)
	case FieldString:
		s, err := it.StringValue()
		if err != nil {
			return err
		}
		p.String(sb, s)
	case FieldArray:
		return printArray(sb, p, it.File(), it.DataOffset())
	case FieldColumn:
		return printColumn(sb, p, it.File(), it.DataOffset())
	case FieldBinary, FieldBinaryCustom:
		mimeID, mimeName, data, err := it.BinaryValue()
		if err != nil {
			return err
		}
		if it.Type() == FieldBinary {
			mimeName = mimetype.ByID(mimeID)
		}
		p.Binary(sb, mimeName, data)
	default:
		raw, err := it.RawValue()
		if err != nil {
			return err
		}
		printScalar(sb, p, it.Type(), raw)
	}
	return nil
}

func printScalar(sb *strings.Builder, p Printer, ft FieldType, raw []byte) {
	if IsNullValue(ft, raw) {
		p.Null(sb)
		return
	}
	v := DecodeNumeric(ft, raw)
	switch ft {
	case FieldU8:
		p.Unsigned(sb, uint64(v.(uint8)))
	case FieldU16:
		p.Unsigned(sb, uint64(v.(uint16)))
	case FieldU32:
		p.Unsigned(sb, uint64(v.(uint32)))
	case FieldU64:
		p.Unsigned(sb, v.(uint64))
	case FieldI8:
		p.Signed(sb, int64(v.(int8)))
	case FieldI16:
		p.Signed(sb, int64(v.(int16)))
	case FieldI32:
		p.Signed(sb, int64(v.(int32)))
	case FieldI64:
		p.Signed(sb, v.(int64))
	case FieldFloat:
		p.Float(sb, v.(float32))
	}
}
