package wire

import "fmt"

// RecordData is implemented by every decodable RDATA shape (spec §4.5). Decode
// is always called with the cursor windowed to exactly rdlength bytes (spec
// §4.6's record_data/record_data_bytes pairing contract) so implementations
// need not track rdlength themselves; the caller closes the window and
// surfaces CursorWindowError if a decoder over- or under-reads.
type RecordData interface {
	RType() Type
	decode(c *ReadCursor) error
	encode(w *WriteCursor) error
}

func newRecordData(t Type) RecordData {
	switch t {
	case TypeA:
		return &RDataA{}
	case TypeAAAA:
		return &RDataAAAA{}
	case TypeNS:
		return &RDataNS{}
	case TypeCNAME:
		return &RDataCNAME{}
	case TypePTR:
		return &RDataPTR{}
	case TypeMB:
		return &RDataMB{}
	case TypeMD:
		return &RDataMD{}
	case TypeMF:
		return &RDataMF{}
	case TypeMG:
		return &RDataMG{}
	case TypeMR:
		return &RDataMR{}
	case TypeSOA:
		return &RDataSOA{}
	case TypeMX:
		return &RDataMX{}
	case TypeMINFO:
		return &RDataMINFO{}
	case TypeHINFO:
		return &RDataHINFO{}
	case TypeTXT:
		return &RDataTXT{}
	case TypeWKS:
		return &RDataWKS{}
	case TypeNULL:
		return &RDataNULL{}
	case TypeOPT:
		return &RDataOPT{}
	default:
		return &RDataUnknown{rtype: t}
	}
}

// decodeRData reads an rdlength-byte window at c's current position into a
// freshly constructed RecordData, enforcing exact consumption.
func decodeRData(c *ReadCursor, t Type, rdlength int) (RecordData, error) {
	if err := c.Window(rdlength); err != nil {
		return nil, err
	}
	rd := newRecordData(t)
	if err := rd.decode(c); err != nil {
		return nil, err
	}
	if err := c.CloseWindow(); err != nil {
		return nil, err
	}
	return rd, nil
}

// RDataA is the A record's RDATA: a single IPv4 address (spec §6.1).
type RDataA struct {
	Address [4]byte
}

func (r *RDataA) RType() Type { return TypeA }

func (r *RDataA) decode(c *ReadCursor) error {
	for i := range r.Address {
		b, err := c.U8()
		if err != nil {
			return err
		}
		r.Address[i] = b
	}
	return nil
}

func (r *RDataA) encode(w *WriteCursor) error { return w.WriteBytes(r.Address[:]) }

func (r *RDataA) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", r.Address[0], r.Address[1], r.Address[2], r.Address[3])
}

// RDataAAAA is the AAAA record's RDATA: a single IPv6 address.
type RDataAAAA struct {
	Address [16]byte
}

func (r *RDataAAAA) RType() Type { return TypeAAAA }

func (r *RDataAAAA) decode(c *ReadCursor) error {
	addr, err := c.U128BE()
	if err != nil {
		return err
	}
	r.Address = addr
	return nil
}

func (r *RDataAAAA) encode(w *WriteCursor) error { return w.WriteBytes(r.Address[:]) }

// nameRData is the shared shape of the single-domain-name RDATA records: NS,
// CNAME, PTR, MB, MD, MF, MG, MR (spec §6.1). Each gets its own named type
// (rather than a single generic) so RType() can report the right wire value.
type nameRData struct {
	Name *Name
}

func (r *nameRData) decode(c *ReadCursor) error {
	n, err := c.DecodeNameHeap()
	if err != nil {
		return err
	}
	r.Name = n
	return nil
}

func (r *nameRData) encode(w *WriteCursor) error { return EncodeName(w, r.Name.String(), nil) }

type RDataNS struct{ nameRData }

func (r *RDataNS) RType() Type { return TypeNS }

type RDataCNAME struct{ nameRData }

func (r *RDataCNAME) RType() Type { return TypeCNAME }

type RDataPTR struct{ nameRData }

func (r *RDataPTR) RType() Type { return TypePTR }

type RDataMB struct{ nameRData }

func (r *RDataMB) RType() Type { return TypeMB }

type RDataMD struct{ nameRData }

func (r *RDataMD) RType() Type { return TypeMD }

type RDataMF struct{ nameRData }

func (r *RDataMF) RType() Type { return TypeMF }

type RDataMG struct{ nameRData }

func (r *RDataMG) RType() Type { return TypeMG }

type RDataMR struct{ nameRData }

func (r *RDataMR) RType() Type { return TypeMR }

// RDataSOA is the SOA record's RDATA (spec §6.1): zone authority data. MNAME
// and RNAME use the heap-backed Name representation (design note 2) since a
// message typically carries at most one SOA.
type RDataSOA struct {
	MNAME   *Name
	RNAME   *Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *RDataSOA) RType() Type { return TypeSOA }

func (r *RDataSOA) decode(c *ReadCursor) error {
	var err error
	if r.MNAME, err = c.DecodeNameHeap(); err != nil {
		return err
	}
	if r.RNAME, err = c.DecodeNameHeap(); err != nil {
		return err
	}
	if r.Serial, err = c.U32BE(); err != nil {
		return err
	}
	if r.Refresh, err = c.U32BE(); err != nil {
		return err
	}
	if r.Retry, err = c.U32BE(); err != nil {
		return err
	}
	if r.Expire, err = c.U32BE(); err != nil {
		return err
	}
	if r.Minimum, err = c.U32BE(); err != nil {
		return err
	}
	return nil
}

func (r *RDataSOA) encode(w *WriteCursor) error {
	if err := EncodeName(w, r.MNAME.String(), nil); err != nil {
		return err
	}
	if err := EncodeName(w, r.RNAME.String(), nil); err != nil {
		return err
	}
	for _, v := range []uint32{r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum} {
		if err := w.U32BE(v); err != nil {
			return err
		}
	}
	return nil
}

// RDataMX is the MX record's RDATA: preference and exchange host.
type RDataMX struct {
	Preference uint16
	Exchange   *Name
}

func (r *RDataMX) RType() Type { return TypeMX }

func (r *RDataMX) decode(c *ReadCursor) error {
	var err error
	if r.Preference, err = c.U16BE(); err != nil {
		return err
	}
	if r.Exchange, err = c.DecodeNameHeap(); err != nil {
		return err
	}
	return nil
}

func (r *RDataMX) encode(w *WriteCursor) error {
	if err := w.U16BE(r.Preference); err != nil {
		return err
	}
	return EncodeName(w, r.Exchange.String(), nil)
}

// RDataMINFO is the MINFO record's RDATA: responsible-mailbox and
// error-mailbox names.
type RDataMINFO struct {
	RMailbx *Name
	EMailbx *Name
}

func (r *RDataMINFO) RType() Type { return TypeMINFO }

func (r *RDataMINFO) decode(c *ReadCursor) error {
	var err error
	if r.RMailbx, err = c.DecodeNameHeap(); err != nil {
		return err
	}
	if r.EMailbx, err = c.DecodeNameHeap(); err != nil {
		return err
	}
	return nil
}

func (r *RDataMINFO) encode(w *WriteCursor) error {
	if err := EncodeName(w, r.RMailbx.String(), nil); err != nil {
		return err
	}
	return EncodeName(w, r.EMailbx.String(), nil)
}

// RDataHINFO is the HINFO record's RDATA: CPU and OS character-strings.
type RDataHINFO struct {
	CPU string
	OS  string
}

func (r *RDataHINFO) RType() Type { return TypeHINFO }

func (r *RDataHINFO) decode(c *ReadCursor) error {
	var err error
	if r.CPU, err = decodeCharString(c); err != nil {
		return err
	}
	if r.OS, err = decodeCharString(c); err != nil {
		return err
	}
	return nil
}

func (r *RDataHINFO) encode(w *WriteCursor) error {
	if err := encodeCharString(w, r.CPU); err != nil {
		return err
	}
	return encodeCharString(w, r.OS)
}

// RDataTXT is the TXT record's RDATA: one or more character-strings, each up
// to 255 bytes, filling the whole RDATA window.
type RDataTXT struct {
	Strings []string
}

func (r *RDataTXT) RType() Type { return TypeTXT }

func (r *RDataTXT) decode(c *ReadCursor) error {
	r.Strings = nil
	for c.Remaining() > 0 {
		s, err := decodeCharString(c)
		if err != nil {
			return err
		}
		r.Strings = append(r.Strings, s)
	}
	return nil
}

func (r *RDataTXT) encode(w *WriteCursor) error {
	for _, s := range r.Strings {
		if err := encodeCharString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// RDataWKS is the WKS record's RDATA (spec §6.1): an address, protocol
// number, and a variable-length service bitmap filling the rest of the
// window.
type RDataWKS struct {
	Address  [4]byte
	Protocol uint8
	Bitmap   []byte
}

func (r *RDataWKS) RType() Type { return TypeWKS }

func (r *RDataWKS) decode(c *ReadCursor) error {
	for i := range r.Address {
		b, err := c.U8()
		if err != nil {
			return err
		}
		r.Address[i] = b
	}
	proto, err := c.U8()
	if err != nil {
		return err
	}
	r.Protocol = proto
	bitmap, err := c.Slice(c.Remaining())
	if err != nil {
		return err
	}
	r.Bitmap = append([]byte(nil), bitmap...)
	return nil
}

func (r *RDataWKS) encode(w *WriteCursor) error {
	if err := w.WriteBytes(r.Address[:]); err != nil {
		return err
	}
	if err := w.U8(r.Protocol); err != nil {
		return err
	}
	return w.WriteBytes(r.Bitmap)
}

// RDataNULL is the NULL record's RDATA: opaque bytes, any content (RFC 1035
// §3.3.10).
type RDataNULL struct {
	Data []byte
}

func (r *RDataNULL) RType() Type { return TypeNULL }

func (r *RDataNULL) decode(c *ReadCursor) error {
	b, err := c.Slice(c.Remaining())
	if err != nil {
		return err
	}
	r.Data = append([]byte(nil), b...)
	return nil
}

func (r *RDataNULL) encode(w *WriteCursor) error { return w.WriteBytes(r.Data) }

// RDataUnknown holds the raw RDATA bytes of any RTYPE this package does not
// decode a dedicated shape for, per the RFC 3597 "unknown RRs" contract: the
// bytes are preserved opaquely rather than rejected.
type RDataUnknown struct {
	rtype Type
	Data  []byte
}

func (r *RDataUnknown) RType() Type { return r.rtype }

func (r *RDataUnknown) decode(c *ReadCursor) error {
	b, err := c.Slice(c.Remaining())
	if err != nil {
		return err
	}
	r.Data = append([]byte(nil), b...)
	return nil
}

func (r *RDataUnknown) encode(w *WriteCursor) error { return w.WriteBytes(r.Data) }

// decodeCharString decodes a DNS <character-string>: a one-byte length
// prefix followed by that many bytes (RFC 1035 §3.3).
func decodeCharString(c *ReadCursor) (string, error) {
	n, err := c.U8()
	if err != nil {
		return "", err
	}
	b, err := c.Slice(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeCharString(w *WriteCursor, s string) error {
	if len(s) > 255 {
		return &DomainNameLabelTooLongError{Length: len(s)}
	}
	if err := w.U8(byte(len(s))); err != nil {
		return err
	}
	return w.WriteBytes([]byte(s))
}

// OPTOption is one variable-length option carried inside an OPT record's
// RDATA (EDNS(0), RFC 6891 §6.1).
type OPTOption struct {
	Code uint16
	Data []byte
}

// RDataOPT is the EDNS(0) pseudo-RR's RDATA: a sequence of OPTOptions filling
// the RDATA window. The OPT record's CLASS and TTL fields carry the UDP
// payload size and the extended RCODE/version/flags respectively and are not
// part of RDATA (spec §4.9) — see EDNSPseudoRR.
type RDataOPT struct {
	Options []OPTOption
}

func (r *RDataOPT) RType() Type { return TypeOPT }

func (r *RDataOPT) decode(c *ReadCursor) error {
	r.Options = nil
	for c.Remaining() > 0 {
		code, err := c.U16BE()
		if err != nil {
			return err
		}
		length, err := c.U16BE()
		if err != nil {
			return err
		}
		data, err := c.Slice(int(length))
		if err != nil {
			return err
		}
		r.Options = append(r.Options, OPTOption{Code: code, Data: append([]byte(nil), data...)})
	}
	return nil
}

func (r *RDataOPT) encode(w *WriteCursor) error {
	for _, opt := range r.Options {
		if err := w.U16BE(opt.Code); err != nil {
			return err
		}
		if err := w.U16BE(uint16(len(opt.Data))); err != nil {
			return err
		}
		if err := w.WriteBytes(opt.Data); err != nil {
			return err
		}
	}
	return nil
}

// EDNSPseudoRR is the parsed form of an OPT pseudo-RR (spec §4.9): the three
// header fields that RFC 6891 repurposes, plus its options.
type EDNSPseudoRR struct {
	UDPPayloadSize uint16
	ExtendedRCode  uint8
	Version        uint8
	DO             bool
	Options        []OPTOption
}

const ednsDOBit = 1 << 15

// decodeEDNSPseudoRR interprets an OPT record's CLASS/TTL/RDATA fields as
// EDNS(0) (spec §4.9).
func decodeEDNSPseudoRR(class Class, ttl uint32, rdata *RDataOPT) EDNSPseudoRR {
	return EDNSPseudoRR{
		UDPPayloadSize: uint16(class),
		ExtendedRCode:  uint8(ttl >> 24),
		Version:        uint8(ttl >> 16),
		DO:             uint32(ttl)&ednsDOBit != 0,
		Options:        rdata.Options,
	}
}

// encodeTTL packs the extended-RCODE/version/flags fields back into the
// 32-bit TTL slot the OPT record repurposes.
func (e EDNSPseudoRR) encodeTTL() uint32 {
	var flags uint32
	if e.DO {
		flags |= ednsDOBit
	}
	return uint32(e.ExtendedRCode)<<24 | uint32(e.Version)<<16 | flags
}
