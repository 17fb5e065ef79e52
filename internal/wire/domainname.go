package wire

import "strings"

// DomainName is the capability set shared by the inline (NameArr) and
// heap-backed (Name) domain name representations (spec §4.3 and design note
// 2): empty-construct, root-construct, borrow as ASCII string, length,
// clear, append a label, set-root, and parse from textual form.
type DomainName interface {
	String() string
	Len() int
	IsRoot() bool
	Clear()
	SetRoot()
	AppendLabel(label string) error
	ParseText(s string) error
}

// Name is the heap-backed domain name representation, used inside record
// data that may already carry more than one embedded name (SOA's MNAME and
// RNAME, MINFO's two mailboxes) where an inline 255-byte array per field
// would make those records needlessly large (design note 2).
type Name struct {
	text strings.Builder
}

// NewName returns an empty Name (no labels, not yet root).
func NewName() *Name { return &Name{} }

// NewRootName returns a Name already set to the root domain ".".
func NewRootName() *Name {
	n := &Name{}
	n.SetRoot()
	return n
}

// ParseName parses s (validated per ValidateNameText) into a new Name.
func ParseName(s string) (*Name, error) {
	n := &Name{}
	if err := n.ParseText(s); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Name) String() string {
	if n.text.Len() == 0 {
		return ""
	}
	return n.text.String()
}

// Len returns the length of the canonical textual form.
func (n *Name) Len() int { return n.text.Len() }

// IsRoot reports whether n holds exactly the root name.
func (n *Name) IsRoot() bool { return n.text.String() == "." }

// Clear resets n to empty (not root — callers must call SetRoot explicitly).
func (n *Name) Clear() { n.text.Reset() }

// SetRoot resets n to the root domain.
func (n *Name) SetRoot() {
	n.text.Reset()
	n.text.WriteByte('.')
}

// AppendLabel appends one label to n, validating it first.
func (n *Name) AppendLabel(label string) error {
	if err := validateLabel([]byte(label)); err != nil {
		return err
	}
	if n.IsRoot() {
		n.text.Reset()
	}
	n.text.WriteString(label)
	n.text.WriteByte('.')
	if n.text.Len() > maxNameWireLength-1 {
		return &DomainNameTooLongError{Length: n.text.Len()}
	}
	return nil
}

// ParseText replaces n's contents with the name parsed from s.
func (n *Name) ParseText(s string) error {
	if err := ValidateNameText(s); err != nil {
		return err
	}
	n.text.Reset()
	if s == "." {
		n.text.WriteByte('.')
		return nil
	}
	full := s
	if !strings.HasSuffix(full, ".") {
		full += "."
	}
	n.text.WriteString(full)
	return nil
}

// inlineNameCapacity is the fixed capacity of NameArr's backing array: 255
// wire bytes decode to at most 254 textual bytes (253 label bytes plus
// separating dots) plus the root's trailing dot, rounded up to a byte
// boundary.
const inlineNameCapacity = 256

// NameArr is the inline, fixed-capacity domain name representation used for
// record and question headers, where one is stored per RR and heap
// allocation per name would dominate traversal cost (design note 2).
type NameArr struct {
	buf [inlineNameCapacity]byte
	n   int
}

// NewNameArr returns an empty NameArr.
func NewNameArr() *NameArr { return &NameArr{} }

// NewRootNameArr returns a NameArr already set to the root domain.
func NewRootNameArr() *NameArr {
	a := &NameArr{}
	a.SetRoot()
	return a
}

func (a *NameArr) String() string {
	if a.n == 0 {
		return ""
	}
	return string(a.buf[:a.n])
}

// Len returns the length of the canonical textual form.
func (a *NameArr) Len() int { return a.n }

// IsRoot reports whether a holds exactly the root name.
func (a *NameArr) IsRoot() bool { return a.n == 1 && a.buf[0] == '.' }

// Clear resets a to empty.
func (a *NameArr) Clear() { a.n = 0 }

// SetRoot resets a to the root domain.
func (a *NameArr) SetRoot() {
	a.buf[0] = '.'
	a.n = 1
}

// AppendLabel appends one label to a, validating it first and failing with
// BufferTooShortError if the inline capacity is exhausted.
func (a *NameArr) AppendLabel(label string) error {
	if err := validateLabel([]byte(label)); err != nil {
		return err
	}
	if a.IsRoot() {
		a.n = 0
	}
	need := a.n + len(label) + 1
	if need > inlineNameCapacity {
		return &BufferTooShortError{Required: need}
	}
	copy(a.buf[a.n:], label)
	a.n += len(label)
	a.buf[a.n] = '.'
	a.n++
	if a.n > maxNameWireLength-1 {
		return &DomainNameTooLongError{Length: a.n}
	}
	return nil
}

// ParseText replaces a's contents with the name parsed from s.
func (a *NameArr) ParseText(s string) error {
	if err := ValidateNameText(s); err != nil {
		return err
	}
	full := s
	if full != "." && !strings.HasSuffix(full, ".") {
		full += "."
	}
	if len(full) > inlineNameCapacity {
		return &BufferTooShortError{Required: len(full)}
	}
	copy(a.buf[:], full)
	a.n = len(full)
	return nil
}
