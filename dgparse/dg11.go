package dgparse

const tagEFDG11 = 0x6B

const (
	tagFullName              = 0x5F0E
	tagPersonalNumber        = 0x5F10
	tagFullDateOfBirth       = 0x5F2B
	tagPlaceOfBirth          = 0x5F11
	tagPermanentAddress      = 0x5F42
	tagTelephone             = 0x5F12
	tagProfession            = 0x5F13
	tagTitle                 = 0x5F14
	tagPersonalSummary       = 0x5F15
	tagProofOfCitizenship    = 0x5F16
	tagOtherValidTDNumbers   = 0x5F17
	tagCustodyInformation    = 0x5F18
)

// EFDG11 holds the additional personal details of ICAO 9303 part 10, 4.7.11.
//
// Other names (tag 5F0F) are a repeated field the upstream decoder this
// module is grounded on never implemented either; they are left for a
// future revision.
type EFDG11 struct {
	FullName              string
	PersonalNumber        string
	FullDateOfBirth       string // YYYYMMDD
	PlaceOfBirth          string
	PermanentAddress      string
	Telephone             string
	Profession            string
	Title                 string
	PersonalSummary       string
	ProofOfCitizenship    []byte
	OtherValidTDNumbers   string
	CustodyInformation    string
}

// ParseEFDG11 decodes a raw EF.DG11 file, outer tag 0x6B.
func ParseEFDG11(data []byte) (*EFDG11, error) {
	t, ok, err := outerTLV(data, tagEFDG11, "EF.DG11")
	if err != nil || !ok {
		return nil, err
	}
	tlvs, err := tagMap(t.Value)
	if err != nil {
		return nil, err
	}

	dg := &EFDG11{}
	dg.FullName, _ = stringValue(tlvs, tagFullName)
	dg.PersonalNumber, _ = stringValue(tlvs, tagPersonalNumber)
	dg.FullDateOfBirth, _ = stringValue(tlvs, tagFullDateOfBirth)
	dg.PlaceOfBirth, _ = stringValue(tlvs, tagPlaceOfBirth)
	dg.PermanentAddress, _ = stringValue(tlvs, tagPermanentAddress)
	dg.Telephone, _ = stringValue(tlvs, tagTelephone)
	dg.Profession, _ = stringValue(tlvs, tagProfession)
	dg.Title, _ = stringValue(tlvs, tagTitle)
	dg.PersonalSummary, _ = stringValue(tlvs, tagPersonalSummary)
	dg.ProofOfCitizenship, _ = bytesValue(tlvs, tagProofOfCitizenship)
	dg.OtherValidTDNumbers, _ = stringValue(tlvs, tagOtherValidTDNumbers)
	dg.CustodyInformation, _ = stringValue(tlvs, tagCustodyInformation)
	return dg, nil
}
