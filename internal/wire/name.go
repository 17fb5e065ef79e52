package wire

import "strings"

// maxPointerHops bounds the number of compression-pointer hops a single name
// decode may follow (spec §4.3: "caps chain length at 32 hops").
const maxPointerHops = 32

// labelEntry is one decoded label together with the absolute offset of its
// length octet, used by NamesEqualAt's pointer short-circuit.
type labelEntry struct {
	offset int
	bytes  []byte
}

// scanLabels walks a compressed name starting at pos in buf, validating
// each label and following compression pointers per spec §4.3. preJumpLimit
// bounds ordinary (non-pointer) forward reads before the first pointer is
// taken; windowed selects which sentinel error a bound violation in that
// phase reports.
func scanLabels(buf []byte, pos int, preJumpLimit int, windowed bool) (labels []labelEntry, resumePos int, err error) {
	jumped := false
	maxPos := -1
	hops := 0
	visited := make(map[int]bool)

	limit := func() int {
		if jumped {
			return len(buf)
		}
		return preJumpLimit
	}
	boundsErr := func() error {
		if !jumped && windowed {
			return ErrEndOfWindow
		}
		return ErrEndOfBuffer
	}

	for {
		if pos >= limit() {
			return nil, 0, boundsErr()
		}
		b := buf[pos]

		switch {
		case b == 0:
			pos++
			if !jumped {
				resumePos = pos
			} else {
				resumePos = maxPos
			}
			return labels, resumePos, nil

		case b&0xC0 == 0x00:
			lpos := pos
			ln := int(b)
			pos++
			if pos+ln > limit() {
				return nil, 0, boundsErr()
			}
			label := buf[pos : pos+ln]
			if verr := validateLabel(label); verr != nil {
				return nil, 0, verr
			}
			labels = append(labels, labelEntry{offset: lpos, bytes: label})
			pos += ln

		case b&0xC0 == 0xC0:
			if pos+1 >= len(buf) {
				return nil, 0, ErrEndOfBuffer
			}
			b2 := buf[pos+1]
			offset := (int(b)&0x3F)<<8 | int(b2)
			if !jumped {
				maxPos = pos + 2
				jumped = true
			}
			hops++
			if hops > maxPointerHops {
				return nil, 0, ErrDomainNameTooMuchPointers
			}
			if offset >= maxPos-2 {
				return nil, 0, &DomainNameBadPointerError{Pointer: offset, MaxOffset: maxPos - 2}
			}
			if visited[offset] {
				return nil, 0, &DomainNamePointerLoopError{Src: pos, Dst: offset}
			}
			visited[offset] = true
			pos = offset

		default:
			return nil, 0, &DomainNameBadLabelTypeError{Byte: b}
		}
	}
}

// DecodeName decodes a (possibly compressed) domain name starting at the
// cursor's current position. On success it returns the canonical
// lowercased, dot-terminated textual form and leaves the cursor positioned
// exactly at the byte following the name's on-wire representation — which,
// per spec §4.3 and design note §9, is computed once from the first
// pointer hop and is NOT simply "wherever the last followed pointer ended".
func (c *ReadCursor) DecodeName() (string, error) {
	limit := c.end
	labels, resume, err := scanLabels(c.buf, c.pos, limit, c.windowed)
	if err != nil {
		return "", err
	}
	c.pos = resume
	if len(labels) == 0 {
		return ".", nil
	}
	var sb strings.Builder
	for _, l := range labels {
		for _, b := range l.bytes {
			sb.WriteByte(toLower(b))
		}
		sb.WriteByte('.')
	}
	return sb.String(), nil
}

// DecodeNameArr decodes a name the same way DecodeName does, into the
// inline representation used for question and record headers (design note
// 2) instead of allocating a string.
func (c *ReadCursor) DecodeNameArr() (NameArr, error) {
	s, err := c.DecodeName()
	if err != nil {
		return NameArr{}, err
	}
	var a NameArr
	if err := a.ParseText(s); err != nil {
		return NameArr{}, err
	}
	return a, nil
}

// DecodeNameHeap decodes a name the same way DecodeName does, into the
// heap-backed representation used for names embedded in RDATA (design note
// 2).
func (c *ReadCursor) DecodeNameHeap() (*Name, error) {
	s, err := c.DecodeName()
	if err != nil {
		return nil, err
	}
	n := NewName()
	if err := n.ParseText(s); err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeLabels decodes a name the same way DecodeName does but returns the
// raw (non-lowercased) label byte slices instead of a joined string. It is
// the primitive NamesEqualAt is built on.
func (c *ReadCursor) DecodeLabels() ([][]byte, error) {
	labels, resume, err := scanLabels(c.buf, c.pos, c.end, c.windowed)
	if err != nil {
		return nil, err
	}
	c.pos = resume
	out := make([][]byte, len(labels))
	for i, l := range labels {
		out[i] = l.bytes
	}
	return out, nil
}

// NamesEqualAt reports whether the names encoded at absolute offsets a and b
// in buf are equal under ASCII case-folding, without allocating a joined
// string for either side. If the two names share an absolute offset at any
// point in their label sequence the remainders are definitionally equal
// (spec §4.3) and the comparison short-circuits.
func NamesEqualAt(buf []byte, a, b int) (bool, error) {
	if a == b {
		return true, nil
	}
	la, _, err := scanLabels(buf, a, len(buf), false)
	if err != nil {
		return false, err
	}
	lb, _, err := scanLabels(buf, b, len(buf), false)
	if err != nil {
		return false, err
	}
	if len(la) != len(lb) {
		return false, nil
	}
	for i := range la {
		if la[i].offset == lb[i].offset {
			return true, nil
		}
		if len(la[i].bytes) != len(lb[i].bytes) {
			return false, nil
		}
		for j := range la[i].bytes {
			if toLower(la[i].bytes[j]) != toLower(lb[i].bytes[j]) {
				return false, nil
			}
		}
	}
	return true, nil
}

// CompareNames orders two canonical (dot-terminated) textual names
// lexicographically byte-by-byte after ASCII case-folding, with shorter
// names sorting first on a tie (spec §4.3 Ordering).
func CompareNames(x, y string) int {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		xb, yb := toLower(x[i]), toLower(y[i])
		if xb != yb {
			if xb < yb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	default:
		return 0
	}
}

// EqualNames reports whether x and y are the same name under ASCII
// case-folding (spec §3: "comparison and hashing are ASCII case-insensitive").
func EqualNames(x, y string) bool {
	return strings.EqualFold(x, y)
}

// ValidateNameText validates a textual domain name per spec §4.3: it must
// be "." (root) or a dot-separated sequence of labels, each satisfying the
// label rule, with maximum textual length 253 unterminated / 254 terminated
// with a trailing dot.
func ValidateNameText(s string) error {
	if s == "." {
		return nil
	}
	trimmed := strings.TrimSuffix(s, ".")
	if (trimmed == s && len(s) > 253) || (trimmed != s && len(s) > 254) {
		return &DomainNameTooLongError{Length: len(s)}
	}
	if trimmed == "" {
		return ErrDomainNameLabelMalformed
	}
	for _, label := range strings.Split(trimmed, ".") {
		if err := validateLabel([]byte(label)); err != nil {
			return err
		}
	}
	return nil
}

// EncodeName writes name (which need not be root- or dot-terminated) onto w
// as a sequence of <len><bytes> labels followed by a terminating zero byte,
// rejecting any label that fails validation and failing with
// DomainNameTooLongError if the wire form would exceed 255 bytes. If
// compress is non-nil, EncodeName both consults it for a backward reference
// (emitting a two-byte pointer instead of the remaining labels) and records
// the offset at which each suffix of name is written, the same way the
// query writer builds compressed messages (spec §4.7).
func EncodeName(w *WriteCursor, name string, compress map[string]int) error {
	if name == "" || name == "." {
		return w.U8(0)
	}
	if err := ValidateNameText(name); err != nil {
		return err
	}
	full := name
	if !strings.HasSuffix(full, ".") {
		full += "."
	}

	wireLen := 0
	rest := full
	for rest != "" && rest != "." {
		if compress != nil {
			key := strings.ToLower(rest)
			if ptr, ok := compress[key]; ok {
				if err := w.U16BE(uint16(ptr) | 0xC000); err != nil {
					return err
				}
				return nil
			}
			if w.Position() < 0x4000 {
				compress[strings.ToLower(rest)] = w.Position()
			}
		}
		dot := strings.IndexByte(rest, '.')
		label := rest[:dot]
		wireLen += 1 + len(label)
		if wireLen+1 > maxNameWireLength {
			return &DomainNameTooLongError{Length: wireLen + 1}
		}
		if err := w.U8(byte(len(label))); err != nil {
			return err
		}
		if err := w.WriteBytes([]byte(label)); err != nil {
			return err
		}
		rest = rest[dot+1:]
	}
	return w.U8(0)
}
