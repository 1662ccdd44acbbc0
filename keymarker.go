package bison

import (
	"github.com/bisondb/bison/internal/membuf"
)

// KeyType selects the primary-key variant a container's header uses.
type KeyType int

const (
	KeyNoKey KeyType = iota
	KeyAutoKey
	KeyUKey
	KeyIKey
	KeySKey
)

// Key marker bytes (§6, normative).
const (
	markerKeyNoKey   byte = '?' // 0x3F
	markerKeyAutoKey byte = '*' // 0x2A
	markerKeyUKey    byte = '+' // 0x2B
	markerKeyIKey    byte = '-' // 0x2D
	markerKeySKey    byte = '!' // 0x21
)

func (k KeyType) marker() byte {
	switch k {
	case KeyNoKey:
		return markerKeyNoKey
	case KeyAutoKey:
		return markerKeyAutoKey
	case KeyUKey:
		return markerKeyUKey
	case KeyIKey:
		return markerKeyIKey
	case KeySKey:
		return markerKeySKey
	}
	return markerKeyNoKey
}

func keyTypeFromMarker(m byte) (KeyType, bool) {
	switch m {
	case markerKeyNoKey:
		return KeyNoKey, true
	case markerKeyAutoKey:
		return KeyAutoKey, true
	case markerKeyUKey:
		return KeyUKey, true
	case markerKeyIKey:
		return KeyIKey, true
	case markerKeySKey:
		return KeySKey, true
	}
	return KeyNoKey, false
}

func (k KeyType) String() string {
	switch k {
	case KeyNoKey:
		return "nokey"
	case KeyAutoKey:
		return "autokey"
	case KeyUKey:
		return "ukey"
	case KeyIKey:
		return "ikey"
	case KeySKey:
		return "skey"
	}
	return "unknown"
}

// Key holds a decoded primary-key header value. Exactly one of the typed
// accessors below is meaningful, selected by Type.
type Key struct {
	Type      KeyType
	Unsigned  uint64
	Signed    int64
	StringKey string
}

// header holds the decoded fixed part of a container: its key and
// revision, the byte offset of the revision varuint itself (absent, as
// -1, for NoKey containers), and the byte offset at which the payload
// (root array) begins.
type header struct {
	key             Key
	revision        uint64
	revisionOffset  int
	payloadOffset   int
}

// writeHeader writes a key marker and key value (for every variant except
// NoKey) at the file's current cursor; the revision that follows is
// written separately by writeRevision.
func writeHeader(mf *membuf.File, key Key) error {
	if err := mf.Write([]byte{key.Type.marker()}); err != nil {
		return err
	}
	switch key.Type {
	case KeyNoKey:
		return nil
	case KeyAutoKey, KeyUKey:
		return writeFixedU64(mf, key.Unsigned)
	case KeyIKey:
		return writeFixedU64(mf, uint64(key.Signed))
	case KeySKey:
		if _, err := mf.WriteVarUint(uint64(len(key.StringKey))); err != nil {
			return err
		}
		return mf.Write([]byte(key.StringKey))
	}
	return newErr(KindIllegalArg, "unknown key type %v", key.Type)
}

// writeRevision writes the revision varuint (0 for a freshly-created
// container) immediately after the key. NoKey containers carry no
// revision counter at all.
func writeRevision(mf *membuf.File, key KeyType, revision uint64) error {
	if key == KeyNoKey {
		return nil
	}
	_, err := mf.WriteVarUint(revision)
	return err
}

// readHeader parses the header starting at the file's current position
// (which must be 0) and leaves the cursor positioned at the payload's
// leading '['.
func readHeader(mf *membuf.File) (header, error) {
	marker, err := mf.Read(1)
	if err != nil {
		return header{}, wrapErr(KindCorrupted, err, "reading key marker")
	}
	keyType, ok := keyTypeFromMarker(marker[0])
	if !ok {
		return header{}, newErr(KindCorrupted, "unrecognized key marker 0x%02x", marker[0])
	}
	key := Key{Type: keyType}
	switch keyType {
	case KeyNoKey:
		// no key bytes, no revision
	case KeyAutoKey, KeyUKey:
		v, err := readFixedU64(mf)
		if err != nil {
			return header{}, err
		}
		key.Unsigned = v
	case KeyIKey:
		v, err := readFixedU64(mf)
		if err != nil {
			return header{}, err
		}
		key.Signed = int64(v)
	case KeySKey:
		n, err := mf.ReadVarUint()
		if err != nil {
			return header{}, err
		}
		b, err := mf.Read(int(n))
		if err != nil {
			return header{}, err
		}
		key.StringKey = string(b)
	}
	var revision uint64
	revisionOffset := -1
	if keyType != KeyNoKey {
		revisionOffset = mf.Tell()
		revision, err = mf.ReadVarUint()
		if err != nil {
			return header{}, err
		}
	}
	return header{
		key:            key,
		revision:       revision,
		revisionOffset: revisionOffset,
		payloadOffset:  mf.Tell(),
	}, nil
}

func writeFixedU64(mf *membuf.File, v uint64) error {
	var buf [8]byte
	putU64LE(buf[:], v)
	return mf.Write(buf[:])
}

func readFixedU64(mf *membuf.File) (uint64, error) {
	b, err := mf.Read(8)
	if err != nil {
		return 0, err
	}
	return getU64LE(b), nil
}

func putU64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

func getU64LE(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(src[i]) << (8 * uint(i))
	}
	return v
}
