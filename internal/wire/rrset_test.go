package wire

import "testing"

func TestBuildRecordSetDirectAnswer(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, []answerFixture{
		{name: "www.example.com.", rtype: TypeA, class: ClassIN, ttl: 300, rdata: aRData([4]byte{192, 0, 2, 1})},
		{name: "www.example.com.", rtype: TypeA, class: ClassIN, ttl: 100, rdata: aRData([4]byte{192, 0, 2, 2})},
	})

	r := NewMessageReader(msg)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	q, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	rs, err := BuildRecordSet(r, h, q)
	if err != nil {
		t.Fatalf("BuildRecordSet: %v", err)
	}
	if len(rs.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(rs.Records))
	}
	if rs.TTL != 100 {
		t.Errorf("TTL = %d, want min(300,100)=100", rs.TTL)
	}
	if len(rs.CNAMEChain) != 0 {
		t.Errorf("expected no CNAME chain, got %v", rs.CNAMEChain)
	}
}

func TestBuildRecordSetChasesCNAME(t *testing.T) {
	msg := buildResponse(t, "alias.example.com.", TypeA, []answerFixture{
		{name: "alias.example.com.", rtype: TypeCNAME, class: ClassIN, ttl: 60, rdata: encodeNameForTest(t, "target.example.com.")},
		{name: "target.example.com.", rtype: TypeA, class: ClassIN, ttl: 300, rdata: aRData([4]byte{203, 0, 113, 9})},
	})

	r := NewMessageReader(msg)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	q, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	rs, err := BuildRecordSet(r, h, q)
	if err != nil {
		t.Fatalf("BuildRecordSet: %v", err)
	}
	if rs.Name != "target.example.com." {
		t.Errorf("Name = %q", rs.Name)
	}
	if len(rs.CNAMEChain) != 1 || rs.CNAMEChain[0] != "target.example.com." {
		t.Errorf("CNAMEChain = %v", rs.CNAMEChain)
	}
	if len(rs.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(rs.Records))
	}
	if rs.TTL != 300 {
		t.Errorf("TTL = %d, want 300 (the A record's; the CNAME's 60 does not count)", rs.TTL)
	}
}

func TestBuildRecordSetTruncatedIsError(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, nil)
	r := NewMessageReader(msg)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	h.Flags = h.Flags.SetTruncated(true)
	q, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if _, err := BuildRecordSet(r, h, q); err != ErrMessageTruncated {
		t.Errorf("got %v, want ErrMessageTruncated", err)
	}
}

func TestBuildRecordSetNoAnswerIsError(t *testing.T) {
	msg := buildResponse(t, "www.example.com.", TypeA, nil)
	r := NewMessageReader(msg)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	q, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if _, err := BuildRecordSet(r, h, q); err != ErrNoAnswer {
		t.Errorf("got %v, want ErrNoAnswer", err)
	}
}

func encodeNameForTest(t *testing.T, name string) []byte {
	t.Helper()
	buf := make([]byte, 256)
	w := NewWriteCursor(buf)
	if err := EncodeName(w, name, nil); err != nil {
		t.Fatalf("EncodeName: %v", err)
	}
	return w.Bytes()
}
