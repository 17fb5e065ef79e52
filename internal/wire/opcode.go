package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// OpCode is the 4-bit header OPCODE field.
type OpCode uint8

const (
	OpCodeQuery  OpCode = 0
	OpCodeIQuery OpCode = 1
	OpCodeStatus OpCode = 2
)

var opCodeNames = map[OpCode]string{
	OpCodeQuery:  "QUERY",
	OpCodeIQuery: "IQUERY",
	OpCodeStatus: "STATUS",
}

var nameToOpCode = func() map[string]OpCode {
	m := make(map[string]OpCode, len(opCodeNames))
	for c, n := range opCodeNames {
		m[n] = c
	}
	return m
}()

var definedOpCodes [16]bool

func init() {
	for c := range opCodeNames {
		definedOpCodes[c] = true
	}
}

// IsDefined reports whether c has a named mnemonic.
func (c OpCode) IsDefined() bool {
	if int(c) >= len(definedOpCodes) {
		return false
	}
	return definedOpCodes[c]
}

// String renders c using its mnemonic when known, else "OPCODE<n>".
func (c OpCode) String() string {
	if n, ok := opCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("OPCODE%d", uint8(c))
}

// ParseOpCode parses a defined mnemonic or the RFC 3597 "OPCODE<n>" form.
func ParseOpCode(s string) (OpCode, error) {
	if c, ok := nameToOpCode[s]; ok {
		return c, nil
	}
	if n, ok := strings.CutPrefix(s, "OPCODE"); ok {
		v, err := strconv.ParseUint(n, 10, 8)
		if err == nil {
			return OpCode(v), nil
		}
	}
	return 0, fmt.Errorf("wire: invalid OPCODE %q", s)
}
