package bison

import (
	"strconv"
	"strings"
)

// DotNodeType classifies one segment of a DotPath.
type DotNodeType int

const (
	// DotNodeArrayIdx addresses an element by position within an array.
	DotNodeArrayIdx DotNodeType = iota
	// DotNodeKeyName addresses a field by name; reserved for object
	// fields, which are not yet a supported container type.
	DotNodeKeyName
)

// DotNode is one segment of a parsed DotPath.
type DotNode struct {
	Type DotNodeType
	Idx  uint32
	Key  string
}

// DotPath is a parsed sequence of dot-separated path segments, e.g.
// "2.0.name" addressing the "name" field of element 0 of the array at
// index 2 of the root.
type DotPath struct {
	nodes []DotNode
}

// NewDotPath parses s into a DotPath. Segments are separated by '.';
// bare digit runs address array indices; any other bare segment made of
// letters, digits, '_' and '-', or any double-quoted segment (which may
// hold other characters except '.'), addresses a key name; any other
// segment fails with KindParseUnknownToken. An empty string yields an
// empty (root-addressing) path.
func NewDotPath(s string) (*DotPath, error) {
	p := &DotPath{}
	if s == "" {
		return p, nil
	}
	for _, raw := range strings.Split(s, ".") {
		if raw == "" {
			return nil, newErr(KindParseDotExpected, "empty path segment in %q", s)
		}
		if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
			p.nodes = append(p.nodes, DotNode{Type: DotNodeKeyName, Key: raw[1 : len(raw)-1]})
			continue
		}
		if idx, err := strconv.ParseUint(raw, 10, 32); err == nil {
			p.nodes = append(p.nodes, DotNode{Type: DotNodeArrayIdx, Idx: uint32(idx)})
			continue
		}
		if !isValidBareKey(raw) {
			return nil, newErr(KindParseUnknownToken, "unrecognized path segment %q", raw)
		}
		p.nodes = append(p.nodes, DotNode{Type: DotNodeKeyName, Key: raw})
	}
	return p, nil
}

func isValidBareKey(s string) bool {
	for _, r := range s {
		if !(r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// maxDotPathNodes bounds path length, per the original implementation's
// fixed-capacity path vector; building past it is an explicit error
// rather than silent truncation.
const maxDotPathNodes = 256

// NewEmptyDotPath returns an empty, root-addressing path ready for
// programmatic construction via AddKey/AddIndex, as an alternative to
// parsing one with NewDotPath.
func NewEmptyDotPath() *DotPath { return &DotPath{} }

// AddIndex appends an array-index segment.
func (p *DotPath) AddIndex(idx uint32) error {
	if len(p.nodes) >= maxDotPathNodes {
		return newErr(KindOutOfBounds, "path exceeds maximum of %d segments", maxDotPathNodes)
	}
	p.nodes = append(p.nodes, DotNode{Type: DotNodeArrayIdx, Idx: idx})
	return nil
}

// AddKey appends a key-name segment, taking the whole string as the key.
func (p *DotPath) AddKey(key string) error {
	return p.AddKeyLen(key, len(key))
}

// AddKeyLen appends a key-name segment truncated (or, if length exceeds
// len(key), left as-is) to length bytes, mirroring the original's
// dot_add_key_len entry point for keys whose length is already known to
// the caller.
func (p *DotPath) AddKeyLen(key string, length int) error {
	if len(p.nodes) >= maxDotPathNodes {
		return newErr(KindOutOfBounds, "path exceeds maximum of %d segments", maxDotPathNodes)
	}
	if length < 0 {
		return newErr(KindIllegalArg, "negative key length %d", length)
	}
	if length < len(key) {
		key = key[:length]
	}
	p.nodes = append(p.nodes, DotNode{Type: DotNodeKeyName, Key: key})
	return nil
}

// Len returns the number of segments in the path.
func (p *DotPath) Len() int { return len(p.nodes) }

// IsEmpty reports whether the path addresses the root itself.
func (p *DotPath) IsEmpty() bool { return len(p.nodes) == 0 }

// At returns the segment at pos.
func (p *DotPath) At(pos int) (DotNode, error) {
	if pos < 0 || pos >= len(p.nodes) {
		return DotNode{}, newErr(KindOutOfBounds, "path segment %d out of range [0,%d)", pos, len(p.nodes))
	}
	return p.nodes[pos], nil
}

// TypeAt returns the DotNodeType of the segment at pos.
func (p *DotPath) TypeAt(pos int) (DotNodeType, error) {
	n, err := p.At(pos)
	if err != nil {
		return 0, err
	}
	return n.Type, nil
}

// IdxAt returns the array index of the segment at pos, failing if that
// segment is a key-name node.
func (p *DotPath) IdxAt(pos int) (uint32, error) {
	n, err := p.At(pos)
	if err != nil {
		return 0, err
	}
	if n.Type != DotNodeArrayIdx {
		return 0, newErr(KindTypeMismatch, "path segment %d is a key, not an index", pos)
	}
	return n.Idx, nil
}

// KeyAt returns the key name of the segment at pos, failing if that
// segment is an array-index node.
func (p *DotPath) KeyAt(pos int) (string, error) {
	n, err := p.At(pos)
	if err != nil {
		return "", err
	}
	if n.Type != DotNodeKeyName {
		return "", newErr(KindTypeMismatch, "path segment %d is an index, not a key", pos)
	}
	return n.Key, nil
}

// Drop removes the segment at pos, shifting subsequent segments down.
func (p *DotPath) Drop(pos int) error {
	if pos < 0 || pos >= len(p.nodes) {
		return newErr(KindOutOfBounds, "path segment %d out of range [0,%d)", pos, len(p.nodes))
	}
	p.nodes = append(p.nodes[:pos], p.nodes[pos+1:]...)
	return nil
}

// String renders the path back into dotted-segment form, quoting any key
// segment that is empty or would otherwise be ambiguous with an index.
func (p *DotPath) String() string {
	var sb strings.Builder
	for i, n := range p.nodes {
		if i > 0 {
			sb.WriteByte('.')
		}
		switch n.Type {
		case DotNodeArrayIdx:
			sb.WriteString(strconv.FormatUint(uint64(n.Idx), 10))
		case DotNodeKeyName:
			needsQuotes := n.Key == "" || !isValidBareKey(n.Key)
			if _, err := strconv.ParseUint(n.Key, 10, 32); err == nil {
				needsQuotes = true
			}
			if needsQuotes {
				sb.WriteByte('"')
			}
			sb.WriteString(n.Key)
			if needsQuotes {
				sb.WriteByte('"')
			}
		}
	}
	return sb.String()
}

// Print writes the dotted-segment form of the path to sb, for callers
// driving output through a shared strings.Builder rather than
// allocating a standalone string via String.
func (p *DotPath) Print(sb *strings.Builder) {
	sb.WriteString(p.String())
}
