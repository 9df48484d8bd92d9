// Package dgparse decodes the contents of LDS1 Elementary Files into typed
// structs: EF.COM's tag list, EF.DG1's MRZ, EF.DG2's biometric templates,
// EF.DG5/DG7's images, and EF.DG11/DG12's free-text detail fields.
//
// Each parser detects an outer-tag mismatch by warning and returning
// (nil, nil) rather than failing hard, matching the tolerant behavior of
// the original_source/src/dg_parsers/*.rs decoders.
package dgparse

import (
	"emrtd-reader/internal/bertlv"
	"emrtd-reader/internal/logging"
)

func tagMap(data []byte) (map[uint16]*bertlv.TLV, error) {
	children, err := bertlv.Children(&bertlv.TLV{Constructed: true, Value: data})
	if err != nil {
		return nil, err
	}
	return bertlv.TagMap(children), nil
}

func stringValue(tlvs map[uint16]*bertlv.TLV, tag uint16) (string, bool) {
	t, ok := tlvs[tag]
	if !ok {
		return "", false
	}
	v, err := bertlv.Value(t)
	if err != nil {
		return "", false
	}
	return string(v), true
}

func bytesValue(tlvs map[uint16]*bertlv.TLV, tag uint16) ([]byte, bool) {
	t, ok := tlvs[tag]
	if !ok {
		return nil, false
	}
	v, err := bertlv.Value(t)
	if err != nil {
		return nil, false
	}
	return v, true
}

func byteValue(tlvs map[uint16]*bertlv.TLV, tag uint16) (byte, bool) {
	v, ok := bytesValue(tlvs, tag)
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// outerTLV parses data's single top-level TLV and checks its tag against
// wantTag, logging and returning ok=false on a mismatch instead of failing.
func outerTLV(data []byte, wantTag uint16, name string) (tlv *bertlv.TLV, ok bool, err error) {
	t, tail, err := bertlv.Parse(data)
	if err != nil {
		return nil, false, err
	}
	if len(tail) > 0 {
		logging.Warnf("%s: %d trailing bytes after outer TLV, ignoring", name, len(tail))
	}
	if t.Tag != wantTag {
		logging.Warnf("%s: outer tag %04X does not match expected %04X, skipping", name, t.Tag, wantTag)
		return nil, false, nil
	}
	return t, true, nil
}
