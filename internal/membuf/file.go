package membuf

import (
	"errors"
	"fmt"

	"github.com/bisondb/bison/internal/fastpath"
	"github.com/bisondb/bison/internal/varuint"
)

// Mode selects whether a File permits mutation.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// savedPosDepth bounds the save/restore position stack, mirroring the
// original implementation's fixed-size saved_pos array.
const savedPosDepth = 32

var (
	// ErrWriteProtected is returned by mutators when the File is ReadOnly.
	ErrWriteProtected = errors.New("membuf: file is write-protected")
	// ErrStackOverflow is returned by SavePosition once savedPosDepth
	// nested positions are already saved.
	ErrStackOverflow = errors.New("membuf: saved-position stack overflow")
	// ErrStackUnderflow is returned by RestorePosition with no saved
	// position to restore.
	ErrStackUnderflow = errors.New("membuf: saved-position stack underflow")
	// ErrNoBitMode is returned by WriteBit/ReadBit/EndBitMode outside of
	// BeginBitMode.
	ErrNoBitMode = errors.New("membuf: not in bit mode")
	// ErrReadOutOfBounds is returned by Peek/Read when the requested range
	// extends past the block's logical size.
	ErrReadOutOfBounds = errors.New("membuf: read out of bounds")
)

// File is a cursor over a Block, with a mode (read-only or read-write) and
// a fixed-depth LIFO of saved positions.
type File struct {
	block *Block
	pos   int
	mode  Mode

	savedPos    [savedPosDepth]int
	savedPosPtr int

	bitMode        bool
	currentReadBit int
	currentWriteBit int
	bytesCompleted int
}

// Open creates a File cursor over block in the given mode, positioned at 0.
func Open(block *Block, mode Mode) *File {
	return &File{block: block, mode: mode}
}

// Dup clones the cursor, sharing the same underlying Block, at src's
// current position.
func Dup(src *File) *File {
	return &File{block: src.block, pos: src.pos, mode: src.mode}
}

// Block returns the underlying memory block.
func (f *File) Block() *Block { return f.block }

// Mode returns the file's access mode.
func (f *File) Mode() Mode { return f.mode }

// Tell returns the current cursor position.
func (f *File) Tell() int { return f.pos }

// Size returns the block's logical size.
func (f *File) Size() int { return f.block.Size() }

// RemainSize returns the number of bytes between the cursor and the end of
// the block's logical content.
func (f *File) RemainSize() int { return f.Size() - f.pos }

// Seek moves the cursor to pos. In ReadWrite mode, seeking past the current
// size grows the block (zero-filling the gap); in ReadOnly mode this is an
// error.
func (f *File) Seek(pos int) error {
	if pos >= f.block.Size() {
		if f.mode == ReadWrite {
			f.block.ResizeZero(pos + 1)
		} else {
			return fmt.Errorf("membuf: seek past end in read-only mode: %w", ErrReadOutOfBounds)
		}
	}
	f.pos = pos
	return nil
}

// Rewind moves the cursor to the start of the block.
func (f *File) Rewind() { f.pos = 0 }

// SeekToEnd moves the cursor to the block's last-used-byte watermark.
func (f *File) SeekToEnd() error {
	return f.Seek(f.block.LastUsedByte())
}

// Grow extends the block's capacity/size by growBy bytes.
func (f *File) Grow(growBy int, zero bool) {
	if growBy <= 0 {
		return
	}
	if zero {
		f.block.ResizeZero(f.block.Size() + growBy)
	} else {
		f.block.Resize(f.block.Size() + growBy)
	}
}

// Shrink releases unused trailing block capacity. Valid only in ReadWrite
// mode.
func (f *File) Shrink() error {
	if f.mode != ReadWrite {
		return ErrWriteProtected
	}
	f.block.Shrink()
	return nil
}

// Cut removes howMany bytes from the end of the block.
func (f *File) Cut(howMany int) error {
	size := f.block.Size()
	if howMany <= 0 || howMany >= size {
		return fmt.Errorf("membuf: illegal cut size %d (block size %d)", howMany, size)
	}
	f.block.Resize(size - howMany)
	if f.pos > f.block.Size() {
		f.pos = f.block.Size()
	}
	return nil
}

// Peek returns a borrowed slice of nbytes at the cursor without advancing
// it.
func (f *File) Peek(nbytes int) ([]byte, error) {
	if f.pos+nbytes > f.block.Size() {
		return nil, ErrReadOutOfBounds
	}
	return f.block.RawData()[f.pos : f.pos+nbytes], nil
}

// Read returns a borrowed slice of nbytes at the cursor and advances past
// it.
func (f *File) Read(nbytes int) ([]byte, error) {
	b, err := f.Peek(nbytes)
	if err != nil {
		return nil, err
	}
	f.pos += nbytes
	return b, nil
}

// Skip advances the cursor by nbytes, growing the block in ReadWrite mode
// if this runs past the current size.
func (f *File) Skip(nbytes int) error {
	required := f.pos + nbytes
	f.pos = required
	if required >= f.block.Size() {
		if f.mode == ReadWrite {
			f.block.ResizeZero(int(float64(required) * growthFactor))
		} else {
			return ErrWriteProtected
		}
	}
	return nil
}

// Write copies src into the block at the cursor, growing the block as
// necessary, and advances the cursor past it.
func (f *File) Write(src []byte) error {
	if f.mode != ReadWrite {
		return ErrWriteProtected
	}
	if len(src) == 0 {
		return nil
	}
	required := f.pos + len(src)
	if required >= f.block.Size() {
		f.block.ResizeZero(int(float64(required) * growthFactor))
	}
	if err := f.block.Write(f.pos, src); err != nil {
		return err
	}
	f.pos += len(src)
	return nil
}

// WriteZero writes howMany zero bytes at the cursor, advancing past them.
func (f *File) WriteZero(howMany int) error {
	if howMany <= 0 {
		return nil
	}
	zeros := make([]byte, howMany)
	return f.Write(zeros)
}

// EnsureSpace reserves nbytes of free space at the cursor, reusing
// pre-existing zero padding where possible. It grows the block first if
// the tail is shorter than nbytes, then scans forward for the first
// non-zero byte within the window; if none is found the reservation is
// satisfied in place, otherwise the tail is shifted right by the
// unconsumed remainder. The cursor's semantic position is preserved.
func (f *File) EnsureSpace(nbytes int) error {
	if nbytes <= 0 {
		return nil
	}
	diff := f.block.Size() - f.pos
	if diff < nbytes {
		f.Grow(nbytes-diff, true)
	}

	window, err := f.Peek(nbytes)
	if err != nil {
		return err
	}
	i := fastpath.FirstNonZero(window)
	if i == nbytes {
		return nil
	}
	return f.MoveRight(nbytes - i)
}

// ReadVarUint decodes a varuint at the cursor and advances past it.
func (f *File) ReadVarUint() (uint64, error) {
	peek, err := f.Peek(varuint.MaxBlocks)
	if err != nil {
		// Fall back to whatever remains; a well-formed varuint near the
		// end of the block may be shorter than MaxBlocks.
		peek, err = f.Peek(f.RemainSize())
		if err != nil {
			return 0, err
		}
	}
	value, n, err := varuint.Decode(peek)
	if err != nil {
		return 0, err
	}
	if err := f.Skip(n); err != nil {
		return 0, err
	}
	return value, nil
}

// PeekVarUint decodes a varuint at the cursor without advancing it.
func (f *File) PeekVarUint() (uint64, int, error) {
	n := varuint.MaxBlocks
	if avail := f.RemainSize(); avail < n {
		n = avail
	}
	peek, err := f.Peek(n)
	if err != nil {
		return 0, 0, err
	}
	value, nbytes, err := varuint.Decode(peek)
	if err != nil {
		return 0, 0, err
	}
	return value, nbytes, nil
}

// WriteVarUint reserves space for, then writes, value as a varuint at the
// cursor, advancing past it. It returns the number of bytes written.
func (f *File) WriteVarUint(value uint64) (int, error) {
	required := varuint.RequiredBlocks(value)
	if err := f.EnsureSpace(required); err != nil {
		return 0, err
	}
	buf := make([]byte, required)
	varuint.EncodeInto(buf, value)
	if err := f.Write(buf); err != nil {
		return 0, err
	}
	return required, nil
}

// UpdateVarUint rewrites the varuint at the cursor in place if value's
// encoding is no wider than the existing one, padding is not possible for
// varuints (unlike fixed-width fields) so a widening update instead
// deletes the old encoding and writes the new one via EnsureSpace/move.
// The cursor is left positioned just after the updated value.
func (f *File) UpdateVarUint(value uint64) error {
	_, oldLen, err := f.PeekVarUint()
	if err != nil {
		return err
	}
	newLen := varuint.RequiredBlocks(value)
	if newLen <= oldLen {
		buf := make([]byte, oldLen)
		varuint.EncodeInto(buf, value)
		// EncodeInto writes the value from the start of buf; padding the
		// rest with continuation-marked zero chunks is not valid, so when
		// newLen < oldLen we instead re-encode using exactly newLen bytes
		// and shift the remainder out via MoveLeft.
		if newLen < oldLen {
			start := f.pos
			if err := f.block.MoveLeft(start+oldLen, oldLen-newLen); err != nil {
				return err
			}
			tight := make([]byte, newLen)
			varuint.EncodeInto(tight, value)
			if err := f.block.Write(start, tight); err != nil {
				return err
			}
			f.pos = start + newLen
			return nil
		}
		if err := f.block.Write(f.pos, buf); err != nil {
			return err
		}
		f.pos += oldLen
		return nil
	}
	// Widen: reserve the extra bytes in place via EnsureSpace, then write.
	if err := f.EnsureSpace(newLen - oldLen); err != nil {
		return err
	}
	buf := make([]byte, newLen)
	varuint.EncodeInto(buf, value)
	if err := f.block.Write(f.pos, buf); err != nil {
		return err
	}
	f.pos += newLen
	return nil
}

// MoveRight shifts the block's suffix starting at the cursor right by
// nbytes.
func (f *File) MoveRight(nbytes int) error {
	return f.block.MoveRight(f.pos, nbytes)
}

// MoveLeft shifts the block's suffix starting at the cursor left by
// nbytes, splicing out the nbytes immediately preceding the cursor.
func (f *File) MoveLeft(nbytes int) error {
	return f.block.MoveLeft(f.pos, nbytes)
}

// SavePosition pushes the current cursor position onto the save stack.
func (f *File) SavePosition() error {
	if f.savedPosPtr >= savedPosDepth {
		return ErrStackOverflow
	}
	f.savedPos[f.savedPosPtr] = f.pos
	f.savedPosPtr++
	return nil
}

// RestorePosition pops the most recently saved position and seeks to it.
func (f *File) RestorePosition() error {
	if f.savedPosPtr <= 0 {
		return ErrStackUnderflow
	}
	f.savedPosPtr--
	f.pos = f.savedPos[f.savedPosPtr]
	return nil
}

// BeginBitMode switches the cursor into bit-addressed writes, allocating a
// fresh zero byte at the cursor to hold the first 8 bits.
func (f *File) BeginBitMode() error {
	if f.mode != ReadWrite {
		return ErrWriteProtected
	}
	f.bitMode = true
	f.currentReadBit, f.currentWriteBit, f.bytesCompleted = 0, 0, 0
	offset := f.pos
	if err := f.Write([]byte{0}); err != nil {
		return err
	}
	f.pos = offset
	return nil
}

// WriteBit sets or clears the next bit in bit mode, rolling over into a
// freshly zeroed byte every 8 bits.
func (f *File) WriteBit(flag bool) error {
	if !f.bitMode {
		return ErrNoBitMode
	}
	f.currentReadBit = 0
	if f.currentWriteBit >= 8 {
		f.currentWriteBit = 0
		f.bytesCompleted++
		if err := f.Skip(1); err != nil {
			return err
		}
		off := f.pos
		if err := f.Write([]byte{0}); err != nil {
			return err
		}
		f.pos = off
		return f.WriteBit(flag)
	}
	offset := f.pos
	b, err := f.Read(1)
	if err != nil {
		return err
	}
	byteVal := b[0]
	mask := byte(1) << uint(f.currentWriteBit)
	if flag {
		byteVal |= mask
	} else {
		byteVal &^= mask
	}
	f.pos = offset
	if err := f.Write([]byte{byteVal}); err != nil {
		return err
	}
	f.pos = offset
	f.currentWriteBit++
	return nil
}

// ReadBit reads the next bit in bit mode, rolling over into the following
// byte every 8 bits.
func (f *File) ReadBit() (bool, error) {
	f.currentWriteBit = 0
	if !f.bitMode {
		return false, ErrNoBitMode
	}
	if f.currentReadBit >= 8 {
		f.currentReadBit = 0
		if err := f.Skip(1); err != nil {
			return false, err
		}
		return f.ReadBit()
	}
	offset := f.pos
	b, err := f.Read(1)
	if err != nil {
		return false, err
	}
	f.pos = offset
	mask := byte(1) << uint(f.currentReadBit)
	result := b[0]&mask != 0
	f.currentReadBit++
	return result, nil
}

// EndBitMode leaves bit mode and returns the number of complete bytes
// consumed.
func (f *File) EndBitMode() (int, error) {
	f.bitMode = false
	if f.currentWriteBit <= 8 {
		if err := f.Skip(1); err != nil {
			return 0, err
		}
		f.bytesCompleted++
	}
	n := f.bytesCompleted
	f.currentWriteBit, f.bytesCompleted = 0, 0
	return n, nil
}
