package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the 16-bit RR TYPE field (RFC 1035 §3.2.2, plus the extensions
// named in spec §6.1).
type Type uint16

// Named TYPE constants for the record set this module decodes (§6.1). Values
// outside this table are still legal on the wire — RFC 3597 governs how an
// unrecognized TYPE is carried — they are simply rendered as TYPE<n>.
const (
	TypeA          Type = 1
	TypeNS         Type = 2
	TypeMD         Type = 3
	TypeMF         Type = 4
	TypeCNAME      Type = 5
	TypeSOA        Type = 6
	TypeMB         Type = 7
	TypeMG         Type = 8
	TypeMR         Type = 9
	TypeNULL       Type = 10
	TypeWKS        Type = 11
	TypePTR        Type = 12
	TypeHINFO      Type = 13
	TypeMINFO      Type = 14
	TypeMX         Type = 15
	TypeTXT        Type = 16
	TypeAAAA       Type = 28
	TypeOPT        Type = 41
	TypeAXFR       Type = 252
	TypeMAILB      Type = 253
	TypeMAILA      Type = 254
	TypeANY        Type = 255
)

var typeNames = map[Type]string{
	TypeA:     "A",
	TypeNS:    "NS",
	TypeMD:    "MD",
	TypeMF:    "MF",
	TypeCNAME: "CNAME",
	TypeSOA:   "SOA",
	TypeMB:    "MB",
	TypeMG:    "MG",
	TypeMR:    "MR",
	TypeNULL:  "NULL",
	TypeWKS:   "WKS",
	TypePTR:   "PTR",
	TypeHINFO: "HINFO",
	TypeMINFO: "MINFO",
	TypeMX:    "MX",
	TypeTXT:   "TXT",
	TypeAAAA:  "AAAA",
	TypeOPT:   "OPT",
	TypeAXFR:  "AXFR",
	TypeMAILB: "MAILB",
	TypeMAILA: "MAILA",
	TypeANY:   "ANY",
}

var nameToType = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// definedTypesLow is a dense 0/1 membership table indexed by the low byte of
// Type, falling back to the map for the (rare) high range. Kept branch-free
// for the common low-valued TYPEs per the spec's O(1)-lookup design note.
var definedTypesLow [256]bool

func init() {
	for t := range typeNames {
		if t < 256 {
			definedTypesLow[t] = true
		}
	}
}

// IsDefined reports whether t has a named mnemonic in this implementation.
func (t Type) IsDefined() bool {
	if t < 256 {
		return definedTypesLow[t]
	}
	_, ok := typeNames[t]
	return ok
}

// IsDataType reports whether t falls in the RFC 6895 "data" TYPE range:
// 0x0001-0x007F or 0x0100-0xEFFF.
func (t Type) IsDataType() bool {
	return (t >= 0x0001 && t <= 0x007F) || (t >= 0x0100 && t <= 0xEFFF)
}

// IsMetaType reports whether t falls in the RFC 6895 "meta" TYPE range:
// 0x0080-0x00FF (this includes TSIG, AXFR/IXFR/MAILB/MAILA and ANY; OPT,
// at 41, falls in the data range).
func (t Type) IsMetaType() bool {
	return t >= 0x0080 && t <= 0x00FF
}

// String renders t using its mnemonic when known, else the RFC 3597 §5
// textual form "TYPE<n>".
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// ParseType parses either a defined mnemonic (case-sensitive, capitals
// only) or the RFC 3597 "TYPE<n>" form.
func ParseType(s string) (Type, error) {
	if t, ok := nameToType[s]; ok {
		return t, nil
	}
	if n, ok := strings.CutPrefix(s, "TYPE"); ok {
		v, err := strconv.ParseUint(n, 10, 16)
		if err == nil {
			return Type(v), nil
		}
	}
	return 0, fmt.Errorf("wire: invalid TYPE %q", s)
}
