package wire

// QueryWriter builds a single-question DNS query message (spec §4.7): a
// 12-byte header with QDCOUNT=1 and RD set unless SetRecursionDesired(false)
// was called, exactly one question, and
// optionally one EDNS(0) OPT pseudo-RR in the additional section. It reserves
// a two-byte length prefix ahead of the message proper so the same encoded
// bytes can be sent over TCP (where that prefix is required on the wire) or
// UDP (where the caller simply skips it) without re-encoding.
type QueryWriter struct {
	buf []byte
	w   *WriteCursor

	id        uint16
	question  Question
	recursion bool
	hasEDNS   bool
	edns      EDNSPseudoRR
}

// tcpLengthPrefixSize is the length of the prefix QueryWriter reserves ahead
// of the message (RFC 1035 §4.2.2).
const tcpLengthPrefixSize = 2

// NewQueryWriter creates a QueryWriter for the given question, using id as
// the message ID. Callers that want a random ID should draw one themselves
// (spec §4.7 leaves ID generation to the caller so retries can reuse or
// rotate it deliberately).
func NewQueryWriter(id uint16, question Question) *QueryWriter {
	return &QueryWriter{id: id, question: question, recursion: true}
}

// SetEDNS attaches an EDNS(0) OPT pseudo-RR to the query, most commonly to
// advertise a UDP payload size larger than the RFC 1035 minimum.
func (q *QueryWriter) SetEDNS(edns EDNSPseudoRR) {
	q.hasEDNS = true
	q.edns = edns
}

// SetRecursionDesired controls the header's RD bit (spec §6.3's recursion
// option). It defaults to true, matching conventional stub-resolver
// behavior.
func (q *QueryWriter) SetRecursionDesired(on bool) {
	q.recursion = on
}

// Encode renders the query into buf, which must be large enough to hold the
// two-byte length prefix, the 12-byte header, the question, and the optional
// OPT record. It returns the full slice including the length prefix (for TCP
// framing) — callers sending over UDP should use WithoutLengthPrefix on the
// result.
func (q *QueryWriter) Encode(buf []byte) ([]byte, error) {
	w := NewWriteCursor(buf)
	if err := w.Skip(tcpLengthPrefixSize); err != nil {
		return nil, err
	}

	arCount := uint16(0)
	if q.hasEDNS {
		arCount = 1
	}
	h := Header{ID: q.id, QDCount: 1, ARCount: arCount}
	h.Flags = h.Flags.SetRecursionDesired(q.recursion)
	if err := h.Write(w); err != nil {
		return nil, err
	}

	if err := q.question.Write(w, nil); err != nil {
		return nil, err
	}

	if q.hasEDNS {
		if err := writeOPTRecord(w, q.edns); err != nil {
			return nil, err
		}
	}

	messageLen := w.Position() - tcpLengthPrefixSize
	out := w.Bytes()
	out[0] = byte(messageLen >> 8)
	out[1] = byte(messageLen)
	return out, nil
}

// WithoutLengthPrefix strips the two-byte TCP length prefix Encode reserves,
// returning the bare message suitable for a single UDP datagram.
func WithoutLengthPrefix(encoded []byte) []byte {
	if len(encoded) < tcpLengthPrefixSize {
		return encoded
	}
	return encoded[tcpLengthPrefixSize:]
}

// writeOPTRecord writes the root-named OPT pseudo-RR that carries edns (spec
// §4.9): NAME is the root, TYPE is OPT, CLASS carries the UDP payload size,
// TTL carries the extended RCODE/version/flags, and RDATA carries the option
// list.
func writeOPTRecord(w *WriteCursor, edns EDNSPseudoRR) error {
	if err := w.U8(0); err != nil { // root name
		return err
	}
	if err := w.U16BE(uint16(TypeOPT)); err != nil {
		return err
	}
	if err := w.U16BE(edns.UDPPayloadSize); err != nil {
		return err
	}
	if err := w.U32BE(edns.encodeTTL()); err != nil {
		return err
	}

	rdlenPos := w.Position()
	if err := w.Skip(2); err != nil {
		return err
	}
	rdata := RDataOPT{Options: edns.Options}
	if err := rdata.encode(w); err != nil {
		return err
	}
	rdlen := w.Position() - (rdlenPos + 2)
	end := w.Position()
	w.SetPosition(rdlenPos)
	if err := w.U16BE(uint16(rdlen)); err != nil {
		return err
	}
	w.SetPosition(end)
	return nil
}
