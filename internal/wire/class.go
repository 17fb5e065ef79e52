package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the 16-bit RR CLASS field (RFC 1035 §3.2.4).
type Class uint16

const (
	ClassIN  Class = 1
	ClassCS  Class = 2
	ClassCH  Class = 3
	ClassHS  Class = 4
	ClassANY Class = 255
)

var classNames = map[Class]string{
	ClassIN:  "IN",
	ClassCS:  "CS",
	ClassCH:  "CH",
	ClassHS:  "HS",
	ClassANY: "ANY",
}

var nameToClass = func() map[string]Class {
	m := make(map[string]Class, len(classNames))
	for c, n := range classNames {
		m[n] = c
	}
	return m
}()

var definedClassesLow [256]bool

func init() {
	for c := range classNames {
		if c < 256 {
			definedClassesLow[c] = true
		}
	}
}

// IsDefined reports whether c has a named mnemonic.
func (c Class) IsDefined() bool {
	if c < 256 {
		return definedClassesLow[c]
	}
	_, ok := classNames[c]
	return ok
}

// IsDataClass reports whether c falls in the RFC 6895 "data" CLASS range.
func (c Class) IsDataClass() bool {
	return (c >= 0x0001 && c <= 0x007F) || (c >= 0x0100 && c <= 0xFEFF)
}

// IsMetaClass reports whether c falls in the RFC 6895 "meta" CLASS range
// (this includes ANY, and the NONE(254)/ANY(255) classes used by RFC 2136).
func (c Class) IsMetaClass() bool {
	return c >= 0x0080 && c <= 0x00FF
}

// String renders c using its mnemonic when known, else "CLASS<n>".
func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// ParseClass parses a defined mnemonic or the RFC 3597 "CLASS<n>" form.
func ParseClass(s string) (Class, error) {
	if c, ok := nameToClass[s]; ok {
		return c, nil
	}
	if n, ok := strings.CutPrefix(s, "CLASS"); ok {
		v, err := strconv.ParseUint(n, 10, 16)
		if err == nil {
			return Class(v), nil
		}
	}
	return 0, fmt.Errorf("wire: invalid CLASS %q", s)
}
