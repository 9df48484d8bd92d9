package mrz

import "testing"

func TestTD3WorkedExample(t *testing.T) {
	raw := "P<D<<MUSTERMANN<<ERIKA<<<<<<<<<<<<<<<<<<<<<<C11T002JM4D<<6408125F2702283<<<<<<<<<<<<<<<2"
	m, err := ParseTD3(raw)
	if err != nil {
		t.Fatalf("ParseTD3: %v", err)
	}
	if m.DocumentNumber != "C11T002JM" {
		t.Fatalf("DocumentNumber = %q", m.DocumentNumber)
	}
	if got, want := m.PrimaryIdentifier(), "MUSTERMANN"; got != want {
		t.Fatalf("PrimaryIdentifier = %q, want %q", got, want)
	}
	if got, want := m.GivenNames(), "ERIKA"; got != want {
		t.Fatalf("GivenNames = %q, want %q", got, want)
	}
	docOK, dobOK, doeOK, personalOK, compositeOK := m.ValidateCheckDigits()
	if !docOK || !dobOK || !doeOK || !personalOK || !compositeOK {
		t.Fatalf("check digits: doc=%v dob=%v doe=%v personal=%v composite=%v",
			docOK, dobOK, doeOK, personalOK, compositeOK)
	}
}

func TestTD1ShortDocumentNumberParsing(t *testing.T) {
	raw := "I<UTO1234567897ABCDEFGH<<<<<<<0001029<3001020UTO<<<<<<<<<<<8MUSTERMANN<<ERIKA<<<<<<<<<<<<<"
	m, err := ParseTD1(raw)
	if err != nil {
		t.Fatalf("ParseTD1: %v", err)
	}
	if m.DocumentNumber != "123456789" {
		t.Fatalf("DocumentNumber = %q", m.DocumentNumber)
	}
	if m.DocumentNumberCheckDigit != '7' {
		t.Fatalf("DocumentNumberCheckDigit = %q", m.DocumentNumberCheckDigit)
	}
	if m.OptionalDataElementsLine1 != "ABCDEFGH" {
		t.Fatalf("OptionalDataElementsLine1 = %q", m.OptionalDataElementsLine1)
	}
}

func TestTD1LongDocumentNumberParsing(t *testing.T) {
	raw := "I<UTO123456789<ABCD3<TEST<<<<<0001029<3001020UTO<<<<<<<<<<<2MUSTERMANN<<ERIKA<<<<<<<<<<<<<"
	m, err := ParseTD1(raw)
	if err != nil {
		t.Fatalf("ParseTD1: %v", err)
	}
	if m.DocumentNumber != "123456789ABCD" {
		t.Fatalf("DocumentNumber = %q", m.DocumentNumber)
	}
	if m.DocumentNumberCheckDigit != '3' {
		t.Fatalf("DocumentNumberCheckDigit = %q", m.DocumentNumberCheckDigit)
	}
	if m.OptionalDataElementsLine1 != "TEST" {
		t.Fatalf("OptionalDataElementsLine1 = %q", m.OptionalDataElementsLine1)
	}
}

func TestTD1FullLengthDocumentNumberParsing(t *testing.T) {
	raw := "I<UTO123456789<ABCDABCDABCDAB60001029<3001020UTO<<<<<<<<<<<0MUSTERMANN<<ERIKA<<<<<<<<<<<<<"
	m, err := ParseTD1(raw)
	if err != nil {
		t.Fatalf("ParseTD1: %v", err)
	}
	if m.DocumentNumber != "123456789ABCDABCDABCDAB" {
		t.Fatalf("DocumentNumber = %q", m.DocumentNumber)
	}
	if m.DocumentNumberCheckDigit != '6' {
		t.Fatalf("DocumentNumberCheckDigit = %q", m.DocumentNumberCheckDigit)
	}
	if m.OptionalDataElementsLine1 != "" {
		t.Fatalf("OptionalDataElementsLine1 = %q, want empty", m.OptionalDataElementsLine1)
	}
}

func TestParseMRZDateCenturyCutoff(t *testing.T) {
	cases := []struct {
		in        string
		wantYear  uint16
		wantMonth uint8
		wantDay   uint8
	}{
		{"640812", 1964, 8, 12},
		{"270224", 2027, 2, 24},
	}
	for _, c := range cases {
		day, month, year, err := ParseMRZDate(c.in)
		if err != nil {
			t.Fatalf("ParseMRZDate(%q): %v", c.in, err)
		}
		if day != c.wantDay || month != c.wantMonth || year != c.wantYear {
			t.Fatalf("ParseMRZDate(%q) = %d/%d/%d, want %d/%d/%d", c.in, day, month, year, c.wantDay, c.wantMonth, c.wantYear)
		}
	}
}

func TestDocumentTypeLabel(t *testing.T) {
	if got := DocumentTypeLabel("P<", "UTO"); got != "Passport" {
		t.Fatalf("DocumentTypeLabel(P<) = %q", got)
	}
	if got := DocumentTypeLabel("ID", "DEU"); got != "ID Card" {
		t.Fatalf("DocumentTypeLabel(ID, DEU) = %q", got)
	}
	if got := DocumentTypeLabel("ID", "DNK"); got != "ID or Residence Permit Card" {
		t.Fatalf("DocumentTypeLabel(ID, DNK) = %q", got)
	}
}
