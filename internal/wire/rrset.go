package wire

// RecordSet is the result of resolving one question against a response
// message (spec §4.8): the final owner name after any CNAME chain has been
// followed, the matching records at that name, and the minimum TTL of those
// matching records (the CNAME records along the chain do not count).
type RecordSet struct {
	Name    string
	Type    Type
	Class   Class
	Records []RecordData
	TTL     uint32

	// CNAMEChain holds the target of each alias hop followed, in order; the
	// original question name is not included, and when any alias was
	// followed the last entry equals Name.
	CNAMEChain []string
}

// maxCNAMEChainHops bounds chasing per spec §4.8, mirroring the compression
// pointer cap of §4.3.
const maxCNAMEChainHops = 32

// BuildRecordSet assembles a RecordSet for question from a message already
// positioned at the start of its answer section (i.e. right after Header and
// Question/QuestionRef have been called on reader). It validates the
// response per spec §4.8: QR must be set, RCODE must be NOERROR, and TC must
// be clear — a truncated response is not a usable answer, it is a signal to
// retry over TCP (see the exchange package).
func BuildRecordSet(reader *MessageReader, header Header, question Question) (*RecordSet, error) {
	if !header.Flags.IsResponse() {
		return nil, ErrBadMessageType
	}
	if header.Flags.Truncated() {
		return nil, ErrMessageTruncated
	}
	if rc := header.Flags.RCode(); rc != RCodeNoError {
		return nil, &BadResponseCodeError{RCode: rc}
	}

	currentName := question.QName.String()
	var chain []string
	result := &RecordSet{Name: currentName, Type: question.QType, Class: question.QClass}
	minTTL := uint32(0)
	haveTTL := false
	matched := false

	for {
		marker, ok, err := reader.RecordMarker()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if marker.Section != SectionAnswer {
			if err := reader.SkipRecordData(marker); err != nil {
				return nil, err
			}
			continue
		}
		if !EqualNames(marker.Name.String(), currentName) || marker.RClass != question.QClass {
			if err := reader.SkipRecordData(marker); err != nil {
				return nil, err
			}
			continue
		}

		if marker.RType == TypeCNAME && question.QType != TypeCNAME {
			rd, err := reader.RecordData(marker)
			if err != nil {
				return nil, err
			}
			cname := rd.(*RDataCNAME)
			if len(chain) >= maxCNAMEChainHops {
				return nil, ErrCnameChainTooLong
			}
			chain = append(chain, cname.Name.String())
			currentName = cname.Name.String()
			continue
		}

		if marker.RType != question.QType && question.QType != TypeANY {
			if err := reader.SkipRecordData(marker); err != nil {
				return nil, err
			}
			continue
		}

		rd, err := reader.RecordData(marker)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, rd)
		matched = true
		if !haveTTL || marker.TTL < minTTL {
			minTTL = marker.TTL
			haveTTL = true
		}
	}

	if !matched {
		return nil, ErrNoAnswer
	}
	result.Name = currentName
	result.CNAMEChain = chain
	result.TTL = minTTL
	return result, nil
}
