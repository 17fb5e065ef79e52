package wire

import "testing"

// buildMessage concatenates raw byte fragments, letting tests write a
// compression pointer as a literal two-byte value.
func buildMessage(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func label(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func TestDecodeNameNoCompression(t *testing.T) {
	buf := buildMessage(label("www"), label("example"), label("com"), []byte{0})
	c := NewReadCursor(buf)
	name, err := c.DecodeName()
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if name != "www.example.com." {
		t.Errorf("got %q, want %q", name, "www.example.com.")
	}
	if c.Position() != len(buf) {
		t.Errorf("cursor at %d, want %d", c.Position(), len(buf))
	}
}

func TestDecodeNameCompressionPointer(t *testing.T) {
	// "example.com." lives at offset 0; "www.example.com." at offset 13
	// points back at it.
	tail := buildMessage(label("example"), label("com"), []byte{0})
	buf := buildMessage(tail, label("www"), []byte{0xC0, 0x00})

	c := NewReadCursor(buf)
	c.SetPosition(len(tail))
	name, err := c.DecodeName()
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if name != "www.example.com." {
		t.Errorf("got %q, want %q", name, "www.example.com.")
	}
	if c.Position() != len(buf) {
		t.Errorf("cursor at %d, want %d (resume offset must be computed at first hop)", c.Position(), len(buf))
	}
}

func TestDecodeNamePointerLoop(t *testing.T) {
	// "com." at 0, "example" at 5 pointing on to "sub" at 15, whose pointer
	// leads back to 5: every pointer points backward, but the chain revisits
	// offset 5.
	buf := buildMessage(label("com"), []byte{0}, label("example"), []byte{0xC0, 0x0F}, label("sub"), []byte{0xC0, 0x05})
	c := NewReadCursor(buf)
	c.SetPosition(15)
	_, err := c.DecodeName()
	if err == nil {
		t.Fatal("expected pointer loop error, got nil")
	}
	var loopErr *DomainNamePointerLoopError
	if !asErr(err, &loopErr) {
		t.Errorf("expected *DomainNamePointerLoopError, got %#v", err)
	}
}

func TestDecodeNameTooManyHops(t *testing.T) {
	// 40 two-byte pointers chained back to a root label at offset 0: p_1
	// points at 0, p_i (i>1) points at p_(i-1). Decoding from p_40 takes 40
	// hops, exceeding the 32-hop cap.
	const hops = 40
	buf := make([]byte, 1+2*hops)
	buf[0] = 0 // root terminator
	prev := 0
	pos := 1
	for i := 0; i < hops; i++ {
		buf[pos] = 0xC0 | byte(prev>>8)
		buf[pos+1] = byte(prev)
		prev = pos
		pos += 2
	}
	c := NewReadCursor(buf)
	c.SetPosition(len(buf) - 2)
	_, err := c.DecodeName()
	if err != ErrDomainNameTooMuchPointers {
		t.Fatalf("got %v, want ErrDomainNameTooMuchPointers", err)
	}
}

func TestDecodeNameBadLabelType(t *testing.T) {
	buf := []byte{0x80, 0x00} // top bits 10: neither length nor pointer
	c := NewReadCursor(buf)
	_, err := c.DecodeName()
	if err == nil {
		t.Fatal("expected bad label type error, got nil")
	}
}

func TestDecodeNameRespectsWindow(t *testing.T) {
	buf := buildMessage(label("www"), label("example"), label("com"), []byte{0})
	c := NewReadCursor(buf)
	if err := c.Window(2); err != nil {
		t.Fatalf("Window: %v", err)
	}
	_, err := c.DecodeName()
	if err != ErrEndOfWindow {
		t.Errorf("got %v, want ErrEndOfWindow", err)
	}
}

func TestEqualNamesCaseFold(t *testing.T) {
	if !EqualNames("WWW.Example.COM.", "www.example.com.") {
		t.Error("expected case-insensitive equality")
	}
	if EqualNames("www.example.com.", "other.example.com.") {
		t.Error("expected inequality")
	}
}

func TestCompareNamesOrdering(t *testing.T) {
	if CompareNames("a.com.", "b.com.") >= 0 {
		t.Error("expected a.com. < b.com.")
	}
	if CompareNames("a.com.", "a.com.") != 0 {
		t.Error("expected equal names to compare equal")
	}
	if CompareNames("aa.com.", "a.com.") <= 0 {
		t.Error("expected longer name to sort after shorter prefix")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	w := NewWriteCursor(buf)
	if err := EncodeName(w, "www.example.com.", nil); err != nil {
		t.Fatalf("EncodeName: %v", err)
	}
	c := NewReadCursor(w.Bytes())
	name, err := c.DecodeName()
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if name != "www.example.com." {
		t.Errorf("got %q", name)
	}
}

func TestEncodeNameCompression(t *testing.T) {
	buf := make([]byte, 256)
	w := NewWriteCursor(buf)
	compress := make(map[string]int)

	if err := EncodeName(w, "example.com.", compress); err != nil {
		t.Fatalf("EncodeName first: %v", err)
	}
	firstEnd := w.Position()

	if err := EncodeName(w, "www.example.com.", compress); err != nil {
		t.Fatalf("EncodeName second: %v", err)
	}

	if w.Position() != firstEnd+1+3+2 {
		t.Errorf("expected compressed second name to add 6 bytes, buffer at %d (first ended %d)", w.Position(), firstEnd)
	}
}

// asErr is a small helper to avoid importing errors.As into every test file.
func asErr(err error, target interface{}) bool {
	switch t := target.(type) {
	case **DomainNamePointerLoopError:
		if e, ok := err.(*DomainNamePointerLoopError); ok {
			*t = e
			return true
		}
	}
	return false
}
