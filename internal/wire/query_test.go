package wire

import "testing"

func TestQueryWriterEncodeDecode(t *testing.T) {
	q, err := NewQuestion("example.com.", TypeA, ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	qw := NewQueryWriter(0xABCD, q)

	buf := make([]byte, 512)
	encoded, err := qw.Encode(buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	msgLen := int(encoded[0])<<8 | int(encoded[1])
	if msgLen != len(encoded)-2 {
		t.Errorf("length prefix = %d, want %d", msgLen, len(encoded)-2)
	}

	body := WithoutLengthPrefix(encoded)
	r := NewMessageReader(body)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if h.ID != 0xABCD {
		t.Errorf("ID = %x", h.ID)
	}
	if !h.Flags.RecursionDesired() {
		t.Error("expected RD set")
	}
	if h.QDCount != 1 || h.ARCount != 0 {
		t.Errorf("QDCount=%d ARCount=%d", h.QDCount, h.ARCount)
	}

	gotQ, err := r.Question()
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if gotQ.QName != q.QName || gotQ.QType != q.QType || gotQ.QClass != q.QClass {
		t.Errorf("got %+v, want %+v", gotQ, q)
	}
}

func TestQueryWriterWithEDNS(t *testing.T) {
	q, err := NewQuestion("example.com.", TypeA, ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	qw := NewQueryWriter(1, q)
	qw.SetEDNS(EDNSPseudoRR{UDPPayloadSize: 4096})

	buf := make([]byte, 512)
	encoded, err := qw.Encode(buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	body := WithoutLengthPrefix(encoded)
	r := NewMessageReader(body)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if h.ARCount != 1 {
		t.Fatalf("ARCount = %d, want 1", h.ARCount)
	}
	if _, err := r.Question(); err != nil {
		t.Fatalf("Question: %v", err)
	}
	marker, ok, err := r.RecordMarker()
	if err != nil || !ok {
		t.Fatalf("RecordMarker: ok=%v err=%v", ok, err)
	}
	if marker.RType != TypeOPT {
		t.Fatalf("RType = %v, want OPT", marker.RType)
	}
	edns, err := r.OptRecord(marker)
	if err != nil {
		t.Fatalf("OptRecord: %v", err)
	}
	if edns.UDPPayloadSize != 4096 {
		t.Errorf("UDPPayloadSize = %d", edns.UDPPayloadSize)
	}
}
