package wire

import "testing"

// buildResponse hand-assembles a minimal response message: header, one
// question, and the given answer records (pre-encoded name/type/class/ttl/
// rdata tuples), used as a test fixture since this package has no general
// message writer (only QueryWriter, which never emits answers).
type answerFixture struct {
	name  string
	rtype Type
	class Class
	ttl   uint32
	rdata []byte
}

func buildResponse(t *testing.T, qname string, qtype Type, answers []answerFixture) []byte {
	t.Helper()
	buf := make([]byte, 4096)
	w := NewWriteCursor(buf)

	h := Header{ID: 0x1234, QDCount: 1, ANCount: uint16(len(answers))}
	h.Flags = h.Flags.SetResponse(true).SetRCode(RCodeNoError)
	if err := h.Write(w); err != nil {
		t.Fatalf("write header: %v", err)
	}

	q, err := NewQuestion(qname, qtype, ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	if err := q.Write(w, nil); err != nil {
		t.Fatalf("write question: %v", err)
	}

	for _, a := range answers {
		if err := EncodeName(w, a.name, nil); err != nil {
			t.Fatalf("write answer name: %v", err)
		}
		if err := w.U16BE(uint16(a.rtype)); err != nil {
			t.Fatal(err)
		}
		if err := w.U16BE(uint16(a.class)); err != nil {
			t.Fatal(err)
		}
		if err := w.U32BE(a.ttl); err != nil {
			t.Fatal(err)
		}
		if err := w.U16BE(uint16(len(a.rdata))); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteBytes(a.rdata); err != nil {
			t.Fatal(err)
		}
	}

	return w.Bytes()
}

func aRData(ip [4]byte) []byte {
	return ip[:]
}

func TestMessageReaderSequentialTraversal(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, []answerFixture{
		{name: "www.example.com.", rtype: TypeA, class: ClassIN, ttl: 300, rdata: aRData([4]byte{192, 0, 2, 1})},
	})

	r := NewMessageReader(msg)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if h.ANCount != 1 {
		t.Fatalf("ANCount = %d", h.ANCount)
	}

	q, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if q.QName.String() != "www.example.com." {
		t.Errorf("QName = %q", q.QName.String())
	}

	marker, ok, err := r.RecordMarker()
	if err != nil || !ok {
		t.Fatalf("RecordMarker: ok=%v err=%v", ok, err)
	}
	if marker.RType != TypeA || marker.Section != SectionAnswer {
		t.Errorf("marker = %+v", marker)
	}
	rd, err := r.RecordData(marker)
	if err != nil {
		t.Fatalf("RecordData: %v", err)
	}
	a := rd.(*RDataA)
	if a.String() != "192.0.2.1" {
		t.Errorf("address = %v", a.Address)
	}

	if !r.Done() {
		t.Error("expected reader Done after last record")
	}

	_, ok, err = r.RecordMarker()
	if err != nil || ok {
		t.Errorf("expected no more records, got ok=%v err=%v", ok, err)
	}
}

func TestMessageReaderSeekToAnswerSection(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, []answerFixture{
		{name: "www.example.com.", rtype: TypeA, class: ClassIN, ttl: 300, rdata: aRData([4]byte{192, 0, 2, 1})},
	})

	r := NewMessageReader(msg)
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	if err := r.SkipQuestions(); err != nil {
		t.Fatalf("SkipQuestions: %v", err)
	}
	if err := r.Seek(SectionAnswer); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	marker, ok, err := r.RecordMarker()
	if err != nil || !ok {
		t.Fatalf("RecordMarker after seek: ok=%v err=%v", ok, err)
	}
	if marker.Name.String() != "www.example.com." {
		t.Errorf("marker.Name = %q", marker.Name.String())
	}
}

func TestMessageReaderSeekUnknownOffsetFails(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, nil)
	r := NewMessageReader(msg)
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	// Authority's offset is not known until Answer has been fully consumed.
	err := r.Seek(SectionAuthority)
	if err == nil {
		t.Fatal("expected RecordsSectionOffsetUnknownError, got nil")
	}
}

func TestMessageReaderFailSticky(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, nil)
	msg = msg[:len(msg)-1] // truncate mid-question is not here; corrupt header instead
	r := NewMessageReader(msg[:2])
	if _, err := r.Header(); err == nil {
		t.Fatal("expected error decoding truncated header")
	}
	if _, err := r.Header(); err != ErrReaderDone {
		t.Errorf("got %v, want ErrReaderDone after failure", err)
	}
}

func TestQuestionRefMatchesQuestion(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, nil)
	r := NewMessageReader(msg)
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	qref, err := r.QuestionRef()
	if err != nil {
		t.Fatalf("QuestionRef: %v", err)
	}
	name, err := qref.NameRef.String()
	if err != nil {
		t.Fatalf("NameRef.String: %v", err)
	}
	if name != "www.example.com." {
		t.Errorf("got %q", name)
	}
}
