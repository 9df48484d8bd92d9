package mrz

import "fmt"

// TD1 is the ID-card (ID-1, three-line, 30-char lines) MRZ layout.
type TD1 struct {
	RawMRZ                     string
	DocumentCode               string
	IssuingState               string
	DocumentNumber             string
	DocumentNumberCheckDigit   byte
	OptionalDataElementsLine1  string
	DateOfBirth                string
	DateOfBirthCheckDigit      byte
	Sex                        byte
	DateOfExpiry               string
	DateOfExpiryCheckDigit     byte
	Nationality                string
	OptionalDataElementsLine2  string
	CompositeCheckDigit        byte
	NameOfHolder                string
}

// ParseTD1 deserializes a 90-character TD1 MRZ string.
//
// ICAO 9303 part 5, note (j): when a document number is longer than 9
// characters, the 9 principal characters occupy positions 6-14 followed by
// a '<' filler instead of a check digit, and the remainder is spliced onto
// the front of the first line's optional data elements, itself followed by
// a check digit and a '<' filler.
func ParseTD1(raw string) (*TD1, error) {
	if len(raw) != 90 {
		return nil, fmt.Errorf("mrz: TD1 input must be 90 characters, got %d", len(raw))
	}

	documentNumber := RemoveMRZPadding(raw[5:14])
	documentNumberCheckDigit := raw[14]
	optionalLine1 := RemoveMRZPadding(raw[15:30])

	if documentNumberCheckDigit == '<' {
		endOfDocNumber := len(optionalLine1)
		if idx := indexByte(optionalLine1, '<'); idx >= 0 {
			endOfDocNumber = idx
		}
		if endOfDocNumber == 0 {
			return nil, fmt.Errorf("mrz: TD1 truncated document number has no remainder before filler")
		}
		documentNumber += optionalLine1[:endOfDocNumber-1]
		documentNumberCheckDigit = optionalLine1[endOfDocNumber-1]

		rest := endOfDocNumber + 1
		if rest > len(optionalLine1) {
			rest = len(optionalLine1)
		}
		optionalLine1 = optionalLine1[rest:]
	}

	return &TD1{
		RawMRZ:                    raw,
		DocumentCode:              raw[0:2],
		IssuingState:              RemoveMRZPadding(raw[2:5]),
		DocumentNumber:            documentNumber,
		DocumentNumberCheckDigit:  documentNumberCheckDigit,
		OptionalDataElementsLine1: optionalLine1,
		DateOfBirth:               raw[30:36],
		DateOfBirthCheckDigit:     raw[36],
		Sex:                       raw[37],
		DateOfExpiry:              raw[38:44],
		DateOfExpiryCheckDigit:    raw[44],
		Nationality:               RemoveMRZPadding(raw[45:48]),
		OptionalDataElementsLine2: RemoveMRZPadding(raw[48:59]),
		CompositeCheckDigit:       raw[59],
		NameOfHolder:              RemoveMRZPadding(raw[60:90]),
	}, nil
}

// GivenNames returns the given-names portion of NameOfHolder.
func (m *TD1) GivenNames() string {
	given, _ := FormatName(m.RawMRZ[60:90])
	return given
}

// PrimaryIdentifier returns the surname portion of NameOfHolder.
func (m *TD1) PrimaryIdentifier() string {
	_, primary := FormatName(m.RawMRZ[60:90])
	return primary
}

// ValidateCheckDigits reports, in order, whether the document-number,
// date-of-birth, date-of-expiry and composite check digits validate.
//
// Composite coverage per ICAO 9303 part 5, 4.2.4: upper-line positions
// 6-30, middle-line positions 1-7, 9-15 and 19-29 (1-indexed).
func (m *TD1) ValidateCheckDigits() (documentNumber, dateOfBirth, dateOfExpiry, composite bool) {
	documentNumber = ValidCheckDigit(m.DocumentNumber, m.DocumentNumberCheckDigit)
	dateOfBirth = ValidCheckDigit(m.DateOfBirth, m.DateOfBirthCheckDigit)
	dateOfExpiry = ValidCheckDigit(m.DateOfExpiry, m.DateOfExpiryCheckDigit)

	compositeBase := m.RawMRZ[5:30] + m.RawMRZ[30:37] + m.RawMRZ[38:45] + m.RawMRZ[48:59]
	composite = ValidCheckDigit(compositeBase, m.CompositeCheckDigit)
	return
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
