package wire

// MessageReader is the hardest module in this package and the one worth
// studying first (spec §4.6): it drives a ReadCursor through a DNS message
// one logical step at a time — header, then each question, then each record
// of each of the three RR sections — tracking just enough state to support
// three traversal styles without re-parsing:
//
//   - sequential: header(); the_question() or skip_questions(); repeated
//     record_marker()+record_data() until done.
//   - random access: record_data_at(section, index) decodes one record's
//     RDATA without requiring the caller to have read the records before it.
//   - seek: seek(section) jumps straight to a section boundary once that
//     boundary's offset is known (computed the first time that section is
//     reached, then memoized).
//
// A MessageReader is single-use and forward-only in its "current position";
// any error transitions it to Done and all further calls return
// ErrReaderDone, per spec §4.6 "fail-sticky" semantics — a partially invalid
// message is never silently half-read.
type MessageReader struct {
	buf   []byte
	c     *ReadCursor
	state readerState

	header Header

	tracker sectionTracker

	qdRead int
}

type readerState int

const (
	stateFresh readerState = iota
	statePostHeader
	statePostQuestions
	stateInSection
	stateDone
)

// sectionTracker remembers, per RR section, the declared count from the
// header, how many records have been read so far in a sequential pass, and
// the absolute byte offset of the section's first record — computed once,
// the first time the reader reaches that section, and reused by every later
// seek() or *_at() call (spec §4.6 "offsets are memoized, never recomputed").
type sectionTracker struct {
	total  [3]int
	read   [3]int
	offset [3]int
	known  [3]bool
}

// NewMessageReader creates a MessageReader over buf. Nothing is parsed until
// Header is called.
func NewMessageReader(buf []byte) *MessageReader {
	return &MessageReader{buf: buf, c: NewReadCursor(buf), state: stateFresh}
}

func (m *MessageReader) fail(err error) error {
	m.state = stateDone
	return err
}

// Header decodes and returns the 12-byte message header. It may only be
// called once, as the first operation on a fresh reader.
func (m *MessageReader) Header() (Header, error) {
	if m.state != stateFresh {
		return Header{}, ErrReaderDone
	}
	h, err := ReadHeader(m.c)
	if err != nil {
		return Header{}, m.fail(err)
	}
	m.header = h
	m.tracker.total[SectionAnswer] = int(h.ANCount)
	m.tracker.total[SectionAuthority] = int(h.NSCount)
	m.tracker.total[SectionAdditional] = int(h.ARCount)
	m.state = statePostHeader
	return h, nil
}

func (m *MessageReader) requirePostHeader() error {
	if m.state != statePostHeader {
		if m.state == stateFresh {
			return ErrBadMessageType
		}
		return ErrReaderDone
	}
	return nil
}

// Question decodes and returns the sole question. It is an alias for
// TheQuestion kept for callers that read more naturally with the shorter
// name.
func (m *MessageReader) Question() (Question, error) {
	return m.TheQuestion()
}

// TheQuestion decodes and returns the sole question, per spec §3's
// single-question convention. It must be called exactly once, right after
// Header, and fails with BadQuestionsCountError unless QDCount is exactly 1
// (spec §4.6 / §8 scenario 2) — a message asking zero or more than one
// question has no single question to hand back.
func (m *MessageReader) TheQuestion() (Question, error) {
	if err := m.requirePostHeader(); err != nil {
		return Question{}, m.fail(err)
	}
	if m.header.QDCount != 1 {
		return Question{}, m.fail(&BadQuestionsCountError{Count: m.header.QDCount})
	}
	q, err := ReadQuestion(m.c)
	if err != nil {
		return Question{}, m.fail(err)
	}
	m.qdRead++
	if err := m.finishQuestions(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// RecordsCount returns the total number of records declared across all three
// sections by the header (spec §8), regardless of how many have been read
// so far.
func (m *MessageReader) RecordsCount() int {
	return m.tracker.total[SectionAnswer] + m.tracker.total[SectionAuthority] + m.tracker.total[SectionAdditional]
}

// QuestionRef is the zero-copy counterpart to Question: the name is returned
// as a NameRef rather than decoded to a string.
func (m *MessageReader) QuestionRef() (QuestionRef, error) {
	if err := m.requirePostHeader(); err != nil {
		return QuestionRef{}, m.fail(err)
	}
	if m.header.QDCount == 0 {
		return QuestionRef{}, m.fail(&BadQuestionsCountError{Count: m.header.QDCount})
	}
	nameOffset := m.c.Position()
	if _, err := m.c.DecodeName(); err != nil {
		return QuestionRef{}, m.fail(err)
	}
	qtype, err := m.c.U16BE()
	if err != nil {
		return QuestionRef{}, m.fail(err)
	}
	qclass, err := m.c.U16BE()
	if err != nil {
		return QuestionRef{}, m.fail(err)
	}
	m.qdRead++
	if err := m.finishQuestions(); err != nil {
		return QuestionRef{}, err
	}
	return QuestionRef{NameRef: newNameRef(m.buf, nameOffset), QType: Type(qtype), QClass: Class(qclass)}, nil
}

// SkipQuestions advances past any remaining questions without decoding them,
// used by callers who only care about the answer sections (spec §4.6).
func (m *MessageReader) SkipQuestions() error {
	if err := m.requirePostHeader(); err != nil {
		return m.fail(err)
	}
	for int(m.qdRead) < int(m.header.QDCount) {
		if _, err := m.c.DecodeName(); err != nil {
			return m.fail(err)
		}
		if err := m.c.Skip(4); err != nil {
			return m.fail(err)
		}
		m.qdRead++
	}
	return m.finishQuestions()
}

func (m *MessageReader) finishQuestions() error {
	if int(m.qdRead) < int(m.header.QDCount) {
		return nil
	}
	m.tracker.offset[SectionAnswer] = m.c.Position()
	m.tracker.known[SectionAnswer] = true
	m.state = statePostQuestions
	return nil
}

// RecordMarker identifies one RR's position and fixed header fields, ahead
// of decoding its RDATA (spec §4.6). RDLength is the caller's budget for the
// matched record_data/record_data_bytes/skip_record_data call.
type RecordMarker struct {
	Section  Section
	Name     NameArr
	RType    Type
	RClass   Class
	TTL      uint32
	RDLength uint16

	rdataOffset int
	nameOffset  int
}

// RecordMarkerRef is the zero-copy counterpart of RecordMarker.
type RecordMarkerRef struct {
	Section  Section
	NameRef  NameRef
	RType    Type
	RClass   Class
	TTL      uint32
	RDLength uint16

	rdataOffset int
}

func (m *MessageReader) currentSection() (Section, bool) {
	switch {
	case m.tracker.read[SectionAnswer] < m.tracker.total[SectionAnswer]:
		return SectionAnswer, true
	case m.tracker.read[SectionAuthority] < m.tracker.total[SectionAuthority]:
		return SectionAuthority, true
	case m.tracker.read[SectionAdditional] < m.tracker.total[SectionAdditional]:
		return SectionAdditional, true
	default:
		return 0, false
	}
}

// RecordMarker decodes the next record's name/TYPE/CLASS/TTL/RDLENGTH fields
// in sequential order across all three sections, leaving the cursor
// positioned at the start of that record's RDATA. Call RecordData,
// RecordDataBytes, or SkipRecordData exactly once afterward before the next
// RecordMarker call (spec §4.6's pairing contract).
func (m *MessageReader) RecordMarker() (RecordMarker, bool, error) {
	if m.state == stateDone && m.tracker.known[SectionAnswer] && m.allSectionsDone() {
		return RecordMarker{}, false, nil
	}
	if m.state != statePostQuestions && m.state != stateInSection {
		return RecordMarker{}, false, m.fail(ErrReaderDone)
	}
	section, ok := m.currentSection()
	if !ok {
		m.state = stateDone
		return RecordMarker{}, false, nil
	}
	m.state = stateInSection

	nameOffset := m.c.Position()
	name, err := m.c.DecodeNameArr()
	if err != nil {
		return RecordMarker{}, false, m.fail(err)
	}
	rtype, err := m.c.U16BE()
	if err != nil {
		return RecordMarker{}, false, m.fail(err)
	}
	rclass, err := m.c.U16BE()
	if err != nil {
		return RecordMarker{}, false, m.fail(err)
	}
	ttl, err := m.c.U32BE()
	if err != nil {
		return RecordMarker{}, false, m.fail(err)
	}
	rdlen, err := m.c.U16BE()
	if err != nil {
		return RecordMarker{}, false, m.fail(err)
	}
	marker := RecordMarker{
		Section:     section,
		Name:        name,
		RType:       Type(rtype),
		RClass:      Class(rclass),
		TTL:         ttl,
		RDLength:    rdlen,
		rdataOffset: m.c.Position(),
		nameOffset:  nameOffset,
	}
	return marker, true, nil
}

// RecordMarkerRef is the zero-copy counterpart of RecordMarker.
func (m *MessageReader) RecordMarkerRefNext() (RecordMarkerRef, bool, error) {
	if m.state == stateDone && m.tracker.known[SectionAnswer] && m.allSectionsDone() {
		return RecordMarkerRef{}, false, nil
	}
	if m.state != statePostQuestions && m.state != stateInSection {
		return RecordMarkerRef{}, false, m.fail(ErrReaderDone)
	}
	section, ok := m.currentSection()
	if !ok {
		m.state = stateDone
		return RecordMarkerRef{}, false, nil
	}
	m.state = stateInSection

	nameOffset := m.c.Position()
	if _, err := m.c.DecodeName(); err != nil {
		return RecordMarkerRef{}, false, m.fail(err)
	}
	rtype, err := m.c.U16BE()
	if err != nil {
		return RecordMarkerRef{}, false, m.fail(err)
	}
	rclass, err := m.c.U16BE()
	if err != nil {
		return RecordMarkerRef{}, false, m.fail(err)
	}
	ttl, err := m.c.U32BE()
	if err != nil {
		return RecordMarkerRef{}, false, m.fail(err)
	}
	rdlen, err := m.c.U16BE()
	if err != nil {
		return RecordMarkerRef{}, false, m.fail(err)
	}
	return RecordMarkerRef{
		Section:     section,
		NameRef:     newNameRef(m.buf, nameOffset),
		RType:       Type(rtype),
		RClass:      Class(rclass),
		TTL:         ttl,
		RDLength:    rdlen,
		rdataOffset: m.c.Position(),
	}, true, nil
}

// RecordData decodes marker's RDATA and advances past it, accounting the
// record against its section's read count and memoizing the next section's
// start offset when this was the section's last record.
func (m *MessageReader) RecordData(marker RecordMarker) (RecordData, error) {
	if m.c.Position() != marker.rdataOffset {
		return nil, m.fail(ErrReaderDone)
	}
	rd, err := decodeRData(m.c, marker.RType, int(marker.RDLength))
	if err != nil {
		return nil, m.fail(err)
	}
	m.advance(marker.Section)
	return rd, nil
}

// RecordDataBytes returns marker's RDATA as a raw, non-decoded byte slice
// (e.g. to preserve an OPT record's option set verbatim) and advances past
// it the same way RecordData does.
func (m *MessageReader) RecordDataBytes(marker RecordMarker) ([]byte, error) {
	if m.c.Position() != marker.rdataOffset {
		return nil, m.fail(ErrReaderDone)
	}
	b, err := m.c.Slice(int(marker.RDLength))
	if err != nil {
		return nil, m.fail(err)
	}
	out := append([]byte(nil), b...)
	m.advance(marker.Section)
	return out, nil
}

// SkipRecordData advances past marker's RDATA without decoding it.
func (m *MessageReader) SkipRecordData(marker RecordMarker) error {
	if m.c.Position() != marker.rdataOffset {
		return m.fail(ErrReaderDone)
	}
	if err := m.c.Skip(int(marker.RDLength)); err != nil {
		return m.fail(err)
	}
	m.advance(marker.Section)
	return nil
}

// OptRecord decodes marker's RDATA as an OPT pseudo-RR, interpreting CLASS
// and TTL per spec §4.9. The caller is responsible for only calling this when
// marker.RType == TypeOPT.
func (m *MessageReader) OptRecord(marker RecordMarker) (EDNSPseudoRR, error) {
	rd, err := m.RecordData(marker)
	if err != nil {
		return EDNSPseudoRR{}, err
	}
	opt, ok := rd.(*RDataOPT)
	if !ok {
		return EDNSPseudoRR{}, m.fail(ErrNotOptRecord)
	}
	return decodeEDNSPseudoRR(marker.RClass, marker.TTL, opt), nil
}

func (m *MessageReader) advance(section Section) {
	m.tracker.read[section]++
	if m.tracker.read[section] == m.tracker.total[section] {
		next := section + 1
		if next <= SectionAdditional && !m.tracker.known[next] {
			m.tracker.offset[next] = m.c.Position()
			m.tracker.known[next] = true
		}
	}
	if m.allSectionsDone() {
		m.state = stateDone
	}
}

func (m *MessageReader) allSectionsDone() bool {
	return m.tracker.read[SectionAnswer] == m.tracker.total[SectionAnswer] &&
		m.tracker.read[SectionAuthority] == m.tracker.total[SectionAuthority] &&
		m.tracker.read[SectionAdditional] == m.tracker.total[SectionAdditional]
}

// Seek repositions the reader at the start of section, provided that
// section's offset is already known — either because a sequential pass has
// already reached it, or because section is Answer (known as soon as the
// questions are consumed). It never scans forward to discover an offset it
// does not already have, per spec §4.6's "offsets are memoized, never
// recomputed" design: call RecordMarker/RecordData enough times first, or
// rely on Answer's automatic availability.
func (m *MessageReader) Seek(section Section) error {
	if !m.tracker.known[section] {
		return m.fail(&RecordsSectionOffsetUnknownError{Section: section})
	}
	m.c.SetPosition(m.tracker.offset[section])
	for s := Section(0); s <= SectionAdditional; s++ {
		if s < section {
			m.tracker.read[s] = m.tracker.total[s]
		} else {
			m.tracker.read[s] = 0
		}
	}
	if m.allSectionsDone() {
		m.state = stateDone
	} else {
		m.state = stateInSection
	}
	return nil
}

// Done reports whether the reader has consumed every question and record
// (or has failed, which also ends traversal).
func (m *MessageReader) Done() bool { return m.state == stateDone }

// markerAt decodes the header of the index-th record of section on a scratch
// cursor, touching neither m.c nor m.tracker nor m.state, so repeated random
// access never disturbs a sequential traversal in progress.
func (m *MessageReader) markerAt(section Section, index int) (RecordMarker, error) {
	if !m.tracker.known[section] {
		return RecordMarker{}, &RecordsSectionOffsetUnknownError{Section: section}
	}
	if index < 0 || index >= m.tracker.total[section] {
		return RecordMarker{}, &RecordIndexOutOfRangeError{Section: section, Index: index, Count: m.tracker.total[section]}
	}

	scratch := NewReadCursor(m.buf)
	scratch.SetPosition(m.tracker.offset[section])
	for i := 0; i < index; i++ {
		if _, err := scratch.DecodeName(); err != nil {
			return RecordMarker{}, err
		}
		if err := scratch.Skip(8); err != nil { // TYPE + CLASS + TTL
			return RecordMarker{}, err
		}
		rdlen, err := scratch.U16BE()
		if err != nil {
			return RecordMarker{}, err
		}
		if err := scratch.Skip(int(rdlen)); err != nil {
			return RecordMarker{}, err
		}
	}

	nameOffset := scratch.Position()
	name, err := scratch.DecodeNameArr()
	if err != nil {
		return RecordMarker{}, err
	}
	rtype, err := scratch.U16BE()
	if err != nil {
		return RecordMarker{}, err
	}
	rclass, err := scratch.U16BE()
	if err != nil {
		return RecordMarker{}, err
	}
	ttl, err := scratch.U32BE()
	if err != nil {
		return RecordMarker{}, err
	}
	rdlen, err := scratch.U16BE()
	if err != nil {
		return RecordMarker{}, err
	}
	return RecordMarker{
		Section:     section,
		Name:        name,
		RType:       Type(rtype),
		RClass:      Class(rclass),
		TTL:         ttl,
		RDLength:    rdlen,
		rdataOffset: scratch.Position(),
		nameOffset:  nameOffset,
	}, nil
}

// RecordDataAt decodes the RDATA of the index-th record of section without
// mutating the reader's traversal state (spec §4.6's random-access
// variant): section's offset must already be known, the way Seek requires.
func (m *MessageReader) RecordDataAt(section Section, index int) (RecordData, error) {
	marker, err := m.markerAt(section, index)
	if err != nil {
		return nil, err
	}
	scratch := NewReadCursor(m.buf)
	scratch.SetPosition(marker.rdataOffset)
	return decodeRData(scratch, marker.RType, int(marker.RDLength))
}

// RecordDataBytesAt is RecordDataAt's raw-bytes counterpart.
func (m *MessageReader) RecordDataBytesAt(section Section, index int) ([]byte, error) {
	marker, err := m.markerAt(section, index)
	if err != nil {
		return nil, err
	}
	scratch := NewReadCursor(m.buf)
	scratch.SetPosition(marker.rdataOffset)
	b, err := scratch.Slice(int(marker.RDLength))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// NameRefAt returns a zero-copy view of the index-th record's name in
// section, without mutating the reader's traversal state.
func (m *MessageReader) NameRefAt(section Section, index int) (NameRef, error) {
	marker, err := m.markerAt(section, index)
	if err != nil {
		return NameRef{}, err
	}
	return newNameRef(m.buf, marker.nameOffset), nil
}

// RecordsReader is a section-scoped view over a MessageReader's records,
// mirroring the original implementation's records_reader: a caller that only
// cares about one section can exhaust it with HasRecords/Marker without
// tracking the other two sections' bookkeeping itself.
type RecordsReader struct {
	m           *MessageReader
	section     Section
	allSections bool
}

// RecordsReaderFor seeks m to section and returns a RecordsReader scoped to
// it, per spec §4.6 / §2's MessageReader -> RecordsReader -> RData pipeline.
func (m *MessageReader) RecordsReaderFor(section Section) (*RecordsReader, error) {
	if err := m.Seek(section); err != nil {
		return nil, err
	}
	return &RecordsReader{m: m, section: section}, nil
}

// RecordsReaderAll returns a RecordsReader over every remaining record in
// every section, in wire order.
func (m *MessageReader) RecordsReaderAll() *RecordsReader {
	return &RecordsReader{m: m, allSections: true}
}

// HasRecords reports whether the reader's scope has any more unread records.
func (r *RecordsReader) HasRecords() bool { return r.Count() > 0 }

// Count returns the number of unread records remaining in the reader's scope.
func (r *RecordsReader) Count() int {
	t := &r.m.tracker
	if r.allSections {
		return (t.total[SectionAnswer] - t.read[SectionAnswer]) +
			(t.total[SectionAuthority] - t.read[SectionAuthority]) +
			(t.total[SectionAdditional] - t.read[SectionAdditional])
	}
	return t.total[r.section] - t.read[r.section]
}

// Marker decodes the next record's header within the reader's scope,
// reporting ok=false once the scope (not necessarily the whole message) is
// exhausted.
func (r *RecordsReader) Marker() (RecordMarker, bool, error) {
	if !r.HasRecords() {
		return RecordMarker{}, false, nil
	}
	return r.m.RecordMarker()
}

// MarkerRef is the zero-copy counterpart of Marker.
func (r *RecordsReader) MarkerRef() (RecordMarkerRef, bool, error) {
	if !r.HasRecords() {
		return RecordMarkerRef{}, false, nil
	}
	return r.m.RecordMarkerRefNext()
}

// Data decodes marker's RDATA and advances past it.
func (r *RecordsReader) Data(marker RecordMarker) (RecordData, error) {
	return r.m.RecordData(marker)
}

// DataBytes returns marker's raw RDATA and advances past it.
func (r *RecordsReader) DataBytes(marker RecordMarker) ([]byte, error) {
	return r.m.RecordDataBytes(marker)
}

// SkipData advances past marker's RDATA without decoding it.
func (r *RecordsReader) SkipData(marker RecordMarker) error {
	return r.m.SkipRecordData(marker)
}
