package dgparse

import "fmt"

const tagEFCom = 0x60

const (
	tagLDSVersion     = 0x5F01
	tagUnicodeVersion = 0x5F36
	tagDataGroupTags  = 0x5C
)

// EFCom holds EF.COM's contents: LDS/Unicode version and the list of data
// group tags the chip declares it carries.
//
// Grounded on original_source/src/dg_parsers/ef_com.rs.
type EFCom struct {
	LDSVersion      string // e.g. "0108"
	UnicodeVersion  string // e.g. "04.00.00"
	DataGroupTags   []byte
}

// ParseEFCom decodes a raw EF.COM file, outer tag 0x60.
func ParseEFCom(data []byte) (*EFCom, error) {
	t, ok, err := outerTLV(data, tagEFCom, "EF.COM")
	if err != nil || !ok {
		return nil, err
	}
	tlvs, err := tagMap(t.Value)
	if err != nil {
		return nil, fmt.Errorf("dgparse: EF.COM: %w", err)
	}

	tagList, ok := bytesValue(tlvs, tagDataGroupTags)
	if !ok {
		return nil, fmt.Errorf("dgparse: EF.COM is missing the required data group tag list (5C)")
	}

	com := &EFCom{DataGroupTags: tagList}
	if v, ok := stringValue(tlvs, tagLDSVersion); ok {
		com.LDSVersion = v
	}
	if v, ok := stringValue(tlvs, tagUnicodeVersion); ok && len(v) == 6 {
		// "040000" -> "04.00.00"
		com.UnicodeVersion = v[0:2] + "." + v[2:4] + "." + v[4:6]
	}
	return com, nil
}
