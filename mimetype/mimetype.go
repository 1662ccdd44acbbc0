// Package mimetype provides the static, sorted-by-extension MIME type
// registry used to encode BISON binary fields compactly (a varuint id
// instead of an inline type name).
package mimetype

import "sort"

// Entry is one row of the registry: a file extension, its stable numeric
// id (the id doubles as the table's storage index), and its MIME type
// string.
type Entry struct {
	Ext  string
	Type string
}

// register is immutable after init: sorted by Ext so lookups can binary
// search, exactly as the extension lookup in the original bison-media
// implementation assumes.
var register = []Entry{
	{"aac", "audio/aac"},
	{"avi", "video/x-msvideo"},
	{"bin", "application/octet-stream"},
	{"bmp", "image/bmp"},
	{"bz", "application/x-bzip"},
	{"bz2", "application/x-bzip2"},
	{"csv", "text/csv"},
	{"doc", "application/msword"},
	{"gif", "image/gif"},
	{"gz", "application/gzip"},
	{"htm", "text/html"},
	{"html", "text/html"},
	{"ico", "image/vnd.microsoft.icon"},
	{"jpeg", "image/jpeg"},
	{"jpg", "image/jpeg"},
	{"js", "text/javascript"},
	{"json", "application/json"},
	{"mp3", "audio/mpeg"},
	{"mp4", "video/mp4"},
	{"mpeg", "video/mpeg"},
	{"oga", "audio/ogg"},
	{"ogv", "video/ogg"},
	{"otf", "font/otf"},
	{"pdf", "application/pdf"},
	{"png", "image/png"},
	{"rtf", "application/rtf"},
	{"sh", "application/x-sh"},
	{"svg", "image/svg+xml"},
	{"tar", "application/x-tar"},
	{"tif", "image/tiff"},
	{"tiff", "image/tiff"},
	{"ttf", "font/ttf"},
	{"txt", "text/plain"},
	{"wav", "audio/wav"},
	{"weba", "audio/webm"},
	{"webm", "video/webm"},
	{"webp", "image/webp"},
	{"woff", "font/woff"},
	{"woff2", "font/woff2"},
	{"xhtml", "application/xhtml+xml"},
	{"xml", "application/xml"},
	{"zip", "application/zip"},
}

// DefaultExt is the fallback extension used when an extension is unknown
// or unset — "application/octet-stream".
const DefaultExt = "bin"

func init() {
	if !sort.SliceIsSorted(register, func(i, j int) bool { return register[i].Ext < register[j].Ext }) {
		panic("mimetype: register is not sorted by extension")
	}
}

// ByExt returns the registry id for ext via binary search, or the id of
// DefaultExt if ext is unknown or empty.
func ByExt(ext string) uint32 {
	if ext != "" {
		if i, ok := find(ext); ok {
			return uint32(i)
		}
	}
	i, ok := find(DefaultExt)
	if !ok {
		panic("mimetype: default extension missing from register")
	}
	return uint32(i)
}

// ByID returns the MIME type string for id, or the default's type if id is
// out of range.
func ByID(id uint32) string {
	if int(id) >= len(register) {
		i, _ := find(DefaultExt)
		return register[i].Type
	}
	return register[id].Type
}

// ExtByID returns the extension for id, or DefaultExt if id is out of
// range.
func ExtByID(id uint32) string {
	if int(id) >= len(register) {
		return DefaultExt
	}
	return register[id].Ext
}

// Count returns the number of registered entries.
func Count() int { return len(register) }

func find(ext string) (int, bool) {
	i := sort.Search(len(register), func(i int) bool { return register[i].Ext >= ext })
	if i < len(register) && register[i].Ext == ext {
		return i, true
	}
	return 0, false
}
