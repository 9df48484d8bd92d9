package dgparse

import (
	"fmt"

	"emrtd-reader/mrz"
)

const tagEFDG1 = 0x61
const tagMRZData = 0x5F1F

// EFDG1 holds the parsed Machine Readable Zone.
//
// Grounded on original_source/src/dg_parsers/ef_dg1.rs.
type EFDG1 struct {
	TD1 *mrz.TD1
	TD3 *mrz.TD3
	Raw string // set when the MRZ length matches neither TD1 nor TD3
}

// ParseEFDG1 decodes a raw EF.DG1 file, outer tag 0x61.
func ParseEFDG1(data []byte) (*EFDG1, error) {
	t, ok, err := outerTLV(data, tagEFDG1, "EF.DG1")
	if err != nil || !ok {
		return nil, err
	}
	tlvs, err := tagMap(t.Value)
	if err != nil {
		return nil, fmt.Errorf("dgparse: EF.DG1: %w", err)
	}

	raw, ok := stringValue(tlvs, tagMRZData)
	if !ok {
		return nil, fmt.Errorf("dgparse: EF.DG1 is missing the MRZ data element (5F1F)")
	}

	switch len(raw) {
	case 90:
		td1, err := mrz.ParseTD1(raw)
		if err != nil {
			return nil, fmt.Errorf("dgparse: EF.DG1: %w", err)
		}
		return &EFDG1{TD1: td1}, nil
	case 88:
		td3, err := mrz.ParseTD3(raw)
		if err != nil {
			return nil, fmt.Errorf("dgparse: EF.DG1: %w", err)
		}
		return &EFDG1{TD3: td3}, nil
	default:
		return &EFDG1{Raw: raw}, nil
	}
}
