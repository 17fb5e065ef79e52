package wire

// ReadCursor is a forward, bounds-checked reader over an immutable byte
// slice. It never panics: every read that would run past the visible end of
// the buffer returns ErrEndOfBuffer (or ErrEndOfWindow, see Window).
//
// A ReadCursor does not copy buf; callers that hand a ReadCursor's
// underlying bytes to something that outlives buf must copy first (see
// nameref.go's NameRef for the one place this matters).
type ReadCursor struct {
	buf []byte
	pos int
	end int

	windowed bool
	savedEnd int
}

// NewReadCursor creates a cursor positioned at the start of buf.
func NewReadCursor(buf []byte) *ReadCursor {
	return &ReadCursor{buf: buf, pos: 0, end: len(buf)}
}

// Position returns the current read offset.
func (c *ReadCursor) Position() int { return c.pos }

// SetPosition repositions the cursor. It does not bounds-check against the
// buffer length; the next read call will fail if the new position is out of
// range.
func (c *ReadCursor) SetPosition(pos int) { c.pos = pos }

// Len returns the length of the underlying buffer, ignoring any active
// window.
func (c *ReadCursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes left before the visible end
// (the window end if a window is active, else the buffer end).
func (c *ReadCursor) Remaining() int { return c.end - c.pos }

func (c *ReadCursor) eob() error {
	if c.windowed {
		return ErrEndOfWindow
	}
	return ErrEndOfBuffer
}

// U8 reads a single byte.
func (c *ReadCursor) U8() (byte, error) {
	if c.pos+1 > c.end {
		return 0, c.eob()
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// U8Unchecked reads a byte without a bounds check. Callers must have
// established Remaining() >= 1 first.
func (c *ReadCursor) U8Unchecked() byte {
	b := c.buf[c.pos]
	c.pos++
	return b
}

// U16BE reads a big-endian uint16.
func (c *ReadCursor) U16BE() (uint16, error) {
	if c.pos+2 > c.end {
		return 0, c.eob()
	}
	v := uint16(c.buf[c.pos])<<8 | uint16(c.buf[c.pos+1])
	c.pos += 2
	return v, nil
}

// U16BEUnchecked reads a big-endian uint16 without a bounds check.
func (c *ReadCursor) U16BEUnchecked() uint16 {
	v := uint16(c.buf[c.pos])<<8 | uint16(c.buf[c.pos+1])
	c.pos += 2
	return v
}

// U32BE reads a big-endian uint32.
func (c *ReadCursor) U32BE() (uint32, error) {
	if c.pos+4 > c.end {
		return 0, c.eob()
	}
	v := uint32(c.buf[c.pos])<<24 | uint32(c.buf[c.pos+1])<<16 | uint32(c.buf[c.pos+2])<<8 | uint32(c.buf[c.pos+3])
	c.pos += 4
	return v, nil
}

// U128BE reads a big-endian 128-bit value (used for AAAA addresses) into a
// 16-byte array.
func (c *ReadCursor) U128BE() ([16]byte, error) {
	var out [16]byte
	if c.pos+16 > c.end {
		return out, c.eob()
	}
	copy(out[:], c.buf[c.pos:c.pos+16])
	c.pos += 16
	return out, nil
}

// Slice returns a view of the next n bytes without copying and advances the
// cursor past them. The returned slice aliases the cursor's backing array
// and is only valid as long as that array is.
func (c *ReadCursor) Slice(n int) ([]byte, error) {
	if n < 0 || c.pos+n > c.end {
		return nil, c.eob()
	}
	s := c.buf[c.pos : c.pos+n]
	c.pos += n
	return s, nil
}

// PeekAt returns the byte at an absolute offset without moving the cursor
// and without regard to any active window (used by name decoding, which
// must be able to read backward past the window of the record currently
// being parsed).
func (c *ReadCursor) PeekAt(offset int) (byte, error) {
	if offset < 0 || offset >= len(c.buf) {
		return 0, ErrEndOfBuffer
	}
	return c.buf[offset], nil
}

// SliceAt returns length bytes starting at an absolute offset, ignoring any
// active window.
func (c *ReadCursor) SliceAt(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(c.buf) {
		return nil, ErrEndOfBuffer
	}
	return c.buf[offset : offset+length], nil
}

// Skip advances the cursor by n bytes without reading them.
func (c *ReadCursor) Skip(n int) error {
	if n < 0 || c.pos+n > c.end {
		return c.eob()
	}
	c.pos += n
	return nil
}

// Window temporarily narrows the visible end of the cursor to Position()+n,
// remembering the previous end so CloseWindow can restore it. Windows may
// not nest. A decoder that wants to guarantee it consumes exactly n bytes of
// RDATA opens a window of size n, parses the record, and calls CloseWindow;
// CloseWindow fails unless the decoder's cursor sits exactly at the window
// end.
func (c *ReadCursor) Window(n int) error {
	if c.windowed {
		return ErrEndOfWindow
	}
	newEnd := c.pos + n
	if newEnd > c.end {
		return ErrEndOfBuffer
	}
	c.savedEnd = c.end
	c.end = newEnd
	c.windowed = true
	return nil
}

// CloseWindow ends the active window. It fails with *CursorWindowError if
// the cursor is not positioned exactly at the window's end.
func (c *ReadCursor) CloseWindow() error {
	if !c.windowed {
		return nil
	}
	expected := c.end
	actual := c.pos
	restoredEnd := c.savedEnd
	c.end = restoredEnd
	c.windowed = false
	if actual != expected {
		return &CursorWindowError{Expected: expected, Actual: actual}
	}
	return nil
}

// InWindow reports whether a window is currently active.
func (c *ReadCursor) InWindow() bool { return c.windowed }

// WriteCursor is a forward, bounds-checked writer over a mutable byte slice.
// Like ReadCursor it never panics; overruns return *BufferTooShortError.
type WriteCursor struct {
	buf []byte
	pos int
}

// NewWriteCursor creates a cursor writing into buf starting at offset 0.
func NewWriteCursor(buf []byte) *WriteCursor {
	return &WriteCursor{buf: buf}
}

// Position returns the current write offset.
func (c *WriteCursor) Position() int { return c.pos }

// SetPosition repositions the cursor for patch-backs (e.g. writing a
// placeholder RDLENGTH and returning to fill it in once the RDATA is known).
func (c *WriteCursor) SetPosition(pos int) { c.pos = pos }

// Bytes returns the portion of the underlying buffer written so far.
func (c *WriteCursor) Bytes() []byte { return c.buf[:c.pos] }

// Cap returns the capacity of the underlying buffer.
func (c *WriteCursor) Cap() int { return len(c.buf) }

func (c *WriteCursor) need(n int) error {
	if c.pos+n > len(c.buf) {
		return &BufferTooShortError{Required: c.pos + n}
	}
	return nil
}

// U8 writes a single byte.
func (c *WriteCursor) U8(v byte) error {
	if err := c.need(1); err != nil {
		return err
	}
	c.buf[c.pos] = v
	c.pos++
	return nil
}

// U16BE writes a big-endian uint16.
func (c *WriteCursor) U16BE(v uint16) error {
	if err := c.need(2); err != nil {
		return err
	}
	c.buf[c.pos] = byte(v >> 8)
	c.buf[c.pos+1] = byte(v)
	c.pos += 2
	return nil
}

// U32BE writes a big-endian uint32.
func (c *WriteCursor) U32BE(v uint32) error {
	if err := c.need(4); err != nil {
		return err
	}
	c.buf[c.pos] = byte(v >> 24)
	c.buf[c.pos+1] = byte(v >> 16)
	c.buf[c.pos+2] = byte(v >> 8)
	c.buf[c.pos+3] = byte(v)
	c.pos += 4
	return nil
}

// WriteBytes writes a raw byte slice.
func (c *WriteCursor) WriteBytes(b []byte) error {
	if err := c.need(len(b)); err != nil {
		return err
	}
	copy(c.buf[c.pos:], b)
	c.pos += len(b)
	return nil
}

// Skip advances the write cursor by n bytes, leaving their contents
// untouched (used to reserve a length prefix that is patched in later).
func (c *WriteCursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}
