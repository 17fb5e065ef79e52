package wire

// Section identifies one of the three record sections that follow the
// question section, in their fixed wire order (spec §4.6).
type Section uint8

const (
	SectionAnswer Section = iota
	SectionAuthority
	SectionAdditional
)

func (s Section) String() string {
	switch s {
	case SectionAnswer:
		return "answer"
	case SectionAuthority:
		return "authority"
	case SectionAdditional:
		return "additional"
	default:
		return "unknown-section"
	}
}

// Question is a single entry of the question section (spec §3). QName uses
// the inline NameArr representation rather than a heap string, since exactly
// one name is stored per question/record header (design note 2).
type Question struct {
	QName  NameArr
	QType  Type
	QClass Class
}

// NewQuestion builds a Question from a textual name, validating it and
// encoding it into the inline representation headers use.
func NewQuestion(name string, qtype Type, qclass Class) (Question, error) {
	var q Question
	if err := q.QName.ParseText(name); err != nil {
		return Question{}, err
	}
	q.QType = qtype
	q.QClass = qclass
	return q, nil
}

// ReadQuestion decodes one Question from c.
func ReadQuestion(c *ReadCursor) (Question, error) {
	var q Question
	var err error
	if q.QName, err = c.DecodeNameArr(); err != nil {
		return Question{}, err
	}
	var qtype, qclass uint16
	if qtype, err = c.U16BE(); err != nil {
		return Question{}, err
	}
	if qclass, err = c.U16BE(); err != nil {
		return Question{}, err
	}
	q.QType = Type(qtype)
	q.QClass = Class(qclass)
	return q, nil
}

// Write encodes q onto w. If compress is non-nil, the name is written with
// compression-pointer support.
func (q Question) Write(w *WriteCursor, compress map[string]int) error {
	if err := EncodeName(w, q.QName.String(), compress); err != nil {
		return err
	}
	if err := w.U16BE(uint16(q.QType)); err != nil {
		return err
	}
	return w.U16BE(uint16(q.QClass))
}

// QuestionRef is a borrowing view of a question: its name is not copied out
// of the message buffer, only located within it. Use ReadQuestion when the
// question must outlive the buffer.
type QuestionRef struct {
	NameRef NameRef
	QType   Type
	QClass  Class
}
