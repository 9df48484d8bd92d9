package dgparse

const tagEFDG12 = 0x6C

const (
	tagIssuingAuthority              = 0x5F19
	tagDateOfIssue                   = 0x5F26
	tagEndorsementsObservations      = 0x5F1B
	tagTaxExitRequirements           = 0x5F1C
	tagImageOfFrontOfDocument        = 0x5F1D
	tagImageOfRearOfDocument         = 0x5F1E
	tagPersonalizationTimestamp      = 0x5F55
	tagPersonalizationDeviceSerial   = 0x5F56
)

// EFDG12 holds the additional document details of ICAO 9303 part 10, 4.7.12.
//
// The rear-image tag is 5F1E, distinct from the front image's 5F1D; some
// reference decoders reuse 5F1D for both, which makes the rear image
// unreadable whenever a chip populates it. This implementation reads them
// as separate tags.
type EFDG12 struct {
	IssuingAuthority            string
	DateOfIssue                 string // YYYYMMDD
	EndorsementsObservations    string
	TaxExitRequirements         string
	ImageOfFrontOfDocument      []byte
	ImageOfRearOfDocument       []byte
	PersonalizationTimestamp    string // yyyymmddhhmmss
	PersonalizationDeviceSerial string
}

// ParseEFDG12 decodes a raw EF.DG12 file, outer tag 0x6C.
func ParseEFDG12(data []byte) (*EFDG12, error) {
	t, ok, err := outerTLV(data, tagEFDG12, "EF.DG12")
	if err != nil || !ok {
		return nil, err
	}
	tlvs, err := tagMap(t.Value)
	if err != nil {
		return nil, err
	}

	dg := &EFDG12{}
	dg.IssuingAuthority, _ = stringValue(tlvs, tagIssuingAuthority)
	dg.DateOfIssue, _ = stringValue(tlvs, tagDateOfIssue)
	dg.EndorsementsObservations, _ = stringValue(tlvs, tagEndorsementsObservations)
	dg.TaxExitRequirements, _ = stringValue(tlvs, tagTaxExitRequirements)
	dg.ImageOfFrontOfDocument, _ = bytesValue(tlvs, tagImageOfFrontOfDocument)
	dg.ImageOfRearOfDocument, _ = bytesValue(tlvs, tagImageOfRearOfDocument)
	dg.PersonalizationTimestamp, _ = stringValue(tlvs, tagPersonalizationTimestamp)
	dg.PersonalizationDeviceSerial, _ = stringValue(tlvs, tagPersonalizationDeviceSerial)
	return dg, nil
}
