// Package mrz parses Machine Readable Zone text (TD1 and TD3 layouts) and
// computes ICAO 9303 check digits. Byte offsets and the TD1
// truncated-document-number splicing rule are grounded on
// original_source/src/types.rs (TD1Mrz::deserialize, TD3Mrz::deserialize);
// field-formatting helpers are grounded on
// original_source/src/dg_parsers/helpers.rs.
package mrz

import "fmt"

// TD3 is the passport (ID-3, two-line, 44-char lines) MRZ layout.
type TD3 struct {
	RawMRZ                       string
	DocumentCode                 string
	IssuingState                 string
	NameOfHolder                 string
	DocumentNumber               string
	DocumentNumberCheckDigit     byte
	Nationality                  string
	DateOfBirth                  string
	DateOfBirthCheckDigit        byte
	Sex                          byte
	DateOfExpiry                 string
	DateOfExpiryCheckDigit       byte
	PersonalNumberOrOptionalData string
	PersonalNumberCheckDigit     byte
	CompositeCheckDigit          byte
}

// ParseTD3 deserializes an 88-character TD3 MRZ string.
func ParseTD3(raw string) (*TD3, error) {
	if len(raw) != 88 {
		return nil, fmt.Errorf("mrz: TD3 input must be 88 characters, got %d", len(raw))
	}

	return &TD3{
		RawMRZ:                       raw,
		DocumentCode:                 raw[0:2],
		IssuingState:                 RemoveMRZPadding(raw[2:5]),
		NameOfHolder:                 RemoveMRZPadding(raw[5:44]),
		DocumentNumber:               RemoveMRZPadding(raw[44:53]),
		DocumentNumberCheckDigit:     raw[53],
		Nationality:                  RemoveMRZPadding(raw[54:57]),
		DateOfBirth:                  raw[57:63],
		DateOfBirthCheckDigit:        raw[63],
		Sex:                          raw[64],
		DateOfExpiry:                 raw[65:71],
		DateOfExpiryCheckDigit:       raw[71],
		PersonalNumberOrOptionalData: RemoveMRZPadding(raw[72:86]),
		PersonalNumberCheckDigit:     raw[86],
		CompositeCheckDigit:          raw[87],
	}, nil
}

// GivenNames returns the given-names portion of NameOfHolder.
func (m *TD3) GivenNames() string {
	given, _ := FormatName(m.RawMRZ[5:44])
	return given
}

// PrimaryIdentifier returns the surname portion of NameOfHolder.
func (m *TD3) PrimaryIdentifier() string {
	_, primary := FormatName(m.RawMRZ[5:44])
	return primary
}

// ValidateCheckDigits reports, in order, whether the document-number,
// date-of-birth, date-of-expiry, personal-number and composite check
// digits validate. The personal-number check digit is only meaningful
// when that field is non-empty (ICAO 9303 part 4, 4.2.2.2).
func (m *TD3) ValidateCheckDigits() (documentNumber, dateOfBirth, dateOfExpiry, personalNumber, composite bool) {
	documentNumber = ValidCheckDigit(m.DocumentNumber, m.DocumentNumberCheckDigit)
	dateOfBirth = ValidCheckDigit(m.DateOfBirth, m.DateOfBirthCheckDigit)
	dateOfExpiry = ValidCheckDigit(m.DateOfExpiry, m.DateOfExpiryCheckDigit)

	personalNumber = true
	if m.PersonalNumberOrOptionalData != "" {
		personalNumber = ValidCheckDigit(m.PersonalNumberOrOptionalData, m.PersonalNumberCheckDigit)
	}

	compositeBase := m.RawMRZ[44:54] + m.RawMRZ[57:64] + m.RawMRZ[65:87]
	composite = ValidCheckDigit(compositeBase, m.CompositeCheckDigit)
	return
}
