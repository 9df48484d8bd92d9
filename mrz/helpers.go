package mrz

import (
	"fmt"
	"strings"
)

// RemoveMRZPadding strips trailing '<' filler characters from an MRZ field.
func RemoveMRZPadding(text string) string {
	return strings.TrimRight(text, "<")
}

// FormatName splits an MRZ name field into (given names, primary identifier).
// The primary identifier (surname) is separated from given names by "<<".
// If no "<<" is present the whole field is treated as given names.
func FormatName(text string) (givenNames, primaryIdentifier string) {
	withSpaces := strings.ReplaceAll(text, "<", " ")
	idx := strings.Index(text, "<<")
	if idx < 0 {
		return strings.TrimSpace(withSpaces), ""
	}
	primaryIdentifier = strings.TrimSpace(withSpaces[:idx])
	givenNames = strings.TrimSpace(withSpaces[idx+2:])
	return givenNames, primaryIdentifier
}

// ParseMRZSex maps an MRZ sex character to its ICAO 9303 human label.
func ParseMRZSex(sex byte) string {
	switch sex {
	case 'M':
		return "Male"
	case 'F':
		return "Female"
	case '<':
		return "Unspecified"
	default:
		return string(sex)
	}
}

const mrzCenturyCutoff = 40

// ParseMRZDate parses a 6-character YYMMDD MRZ date field, applying the
// ICAO century-cutoff rule: a two-digit year below 40 is assumed 20xx,
// otherwise 19xx.
func ParseMRZDate(text string) (day, month uint8, year uint16, err error) {
	if len(text) != 6 {
		return 0, 0, 0, fmt.Errorf("mrz: date field must be 6 characters, got %d", len(text))
	}
	digits, err := textToNumeric(text)
	if err != nil {
		return 0, 0, 0, err
	}
	yy := digits[0]*10 + digits[1]
	if yy < mrzCenturyCutoff {
		year = 2000 + uint16(yy)
	} else {
		year = 1900 + uint16(yy)
	}
	month = digits[2]*10 + digits[3]
	day = digits[4]*10 + digits[5]
	return day, month, year, nil
}

// ParseDGDate parses an 8-character YYYYMMDD data-group date field, as used
// by EF.DG11's date of birth and EF.DG12's date of issue.
func ParseDGDate(text string) (day, month uint8, year uint16, err error) {
	if len(text) != 8 {
		return 0, 0, 0, fmt.Errorf("mrz: data group date field must be 8 characters, got %d", len(text))
	}
	digits, err := textToNumeric(text)
	if err != nil {
		return 0, 0, 0, err
	}
	year = uint16(digits[0])*1000 + uint16(digits[1])*100 + uint16(digits[2])*10 + uint16(digits[3])
	month = digits[4]*10 + digits[5]
	day = digits[6]*10 + digits[7]
	return day, month, year, nil
}

// FormatDate renders a (day, month, year) triple as "DD.MM.YYYY (YYYY-MM-DD)".
func FormatDate(day, month uint8, year uint16) string {
	return fmt.Sprintf("%02d.%02d.%04d (%04d-%02d-%02d)", day, month, year, year, month, day)
}

func textToNumeric(text string) ([]uint8, error) {
	out := make([]uint8, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("mrz: non-numeric character %q at position %d", c, i)
		}
		out[i] = c - '0'
	}
	return out, nil
}

// DocumentTypeLabel maps a two-character MRZ document code and issuing
// country to a human-readable document type, per the document-type quirks
// catalogued in ICAO 9303 part 5 note (k) and observed issuer conventions.
func DocumentTypeLabel(documentCode, countryCode string) string {
	if len(documentCode) != 2 {
		return documentCode
	}

	switch documentCode {
	case "C<":
		if countryCode == "ITA" {
			return "ID Card"
		}
	case "I<":
		return "ID Card"
	case "ID":
		switch countryCode {
		case "DNK", "BEL", "PLN":
			return "ID or Residence Permit Card"
		}
		return "ID Card"
	case "IP":
		return "Passport Card"
	case "AD", "AR", "CR", "IR", "IT", "RP", "RT":
		return "Residence Permit Card"
	case "IB", "IW", "IK", "IE", "IO", "IF", "IZ":
		if countryCode == "PLN" {
			return "Residence Permit Card"
		}
	case "AI", "CV", "AC":
		return fmt.Sprintf("%s (disallowed by ICAO 9303 Part 5)", documentCode)
	}

	switch documentCode[0] {
	case 'P':
		return "Passport"
	case 'I', 'C':
		return "ID Card (likely)"
	case 'V':
		return fmt.Sprintf("%s (disallowed by ICAO 9303 Part 5)", documentCode)
	}
	return fmt.Sprintf("unknown document type %s", documentCode)
}
