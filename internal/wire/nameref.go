package wire

// NameRef is a zero-copy, borrowing view of a domain name inside a message
// buffer: just the absolute offset of its first label byte. It is valid for
// as long as the owning buffer is (spec §3 Lifecycles). Materializing the
// text (String) or comparing two refs (Equal) re-walks the compressed name
// from buf each time rather than caching, since NameRef itself must stay
// allocation-free to construct.
type NameRef struct {
	buf    []byte
	offset int
}

// newNameRef builds a NameRef at the given absolute offset into buf.
func newNameRef(buf []byte, offset int) NameRef {
	return NameRef{buf: buf, offset: offset}
}

// String decodes and returns the canonical textual form of the referenced
// name. Unlike (*ReadCursor).DecodeName this never mutates cursor state.
func (r NameRef) String() (string, error) {
	c := NewReadCursor(r.buf)
	c.SetPosition(r.offset)
	return c.DecodeName()
}

// Equal reports whether r and other refer to equal names, honoring the
// absolute-offset short-circuit of spec §4.3.
func (r NameRef) Equal(other NameRef) (bool, error) {
	if &r.buf[0] == &other.buf[0] || sameBacking(r.buf, other.buf) {
		return NamesEqualAt(r.buf, r.offset, other.offset)
	}
	sa, err := r.String()
	if err != nil {
		return false, err
	}
	sb, err := other.String()
	if err != nil {
		return false, err
	}
	return EqualNames(sa, sb), nil
}

// EqualText reports whether r decodes to the same name as the textual form
// s, under ASCII case-folding.
func (r NameRef) EqualText(s string) (bool, error) {
	got, err := r.String()
	if err != nil {
		return false, err
	}
	return EqualNames(got, s), nil
}

// Offset returns the absolute buffer offset this ref points at.
func (r NameRef) Offset() int { return r.offset }

func sameBacking(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == 0 && len(b) == 0
	}
	return &a[0] == &b[0]
}
