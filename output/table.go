// Package output renders reader status and the decoded document summary as
// go-pretty tables, and prints plain colorized status lines. Grounded on the
// teacher's output/table.go: the same color scheme variables, the
// getTableStyle/newTable helpers, and PrintSuccess/PrintError/PrintWarning,
// generalized from USIM field rows to eMRTD document fields.
package output

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"emrtd-reader/dgparse"
	"emrtd-reader/mrz"
	"emrtd-reader/orchestrator"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
	colorWarn    = text.Colors{text.FgYellow}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Color.RowAlternate = text.Colors{text.FgHiWhite}
	style.Options.SeparateRows = false
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	t.Style().Options.SeparateRows = false
	return t
}

// PrintReaderInfo prints the connected reader's name and ATR.
func PrintReaderInfo(readerName, atr string) {
	fmt.Println()
	t := newTable()
	t.SetTitle("READER & CARD INFO")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 15},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})
	t.AppendRow(table.Row{"Reader", readerName})
	t.AppendRow(table.Row{"ATR", atr})
	t.Render()
}

// PrintReaderList prints the available PC/SC readers.
func PrintReaderList(readers []string) {
	fmt.Println()
	t := newTable()
	t.SetTitle("AVAILABLE SMART CARD READERS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 8},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})
	if len(readers) == 0 {
		t.AppendRow(table.Row{"Status", colorWarn.Sprint("No readers found")})
	} else {
		for i, r := range readers {
			t.AppendRow(table.Row{fmt.Sprintf("[%d]", i), r})
		}
	}
	t.Render()
}

// PrintError prints a failure message.
func PrintError(msg string) {
	fmt.Println(colorError.Sprintf("✗ Error: %s", msg))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Println(colorSuccess.Sprintf("✓ %s", msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Println(colorWarn.Sprintf("⚠ %s", msg))
}

// PrintDocumentSummary renders the decoded document as a table: MRZ identity
// fields from EF.DG1, the number of files read, and biometric counts.
func PrintDocumentSummary(doc *orchestrator.Document) {
	fmt.Println()
	t := newTable()
	t.SetTitle("EMRTD DOCUMENT SUMMARY")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	for _, f := range doc.Files {
		if f.Parsed.DG1 == nil {
			continue
		}
		appendMRZRows(t, f.Parsed.DG1)
		break
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"PACE available", doc.PaceAvailable})
	t.AppendRow(table.Row{"Files read", countReadFiles(doc)})
	for _, f := range doc.Files {
		switch {
		case f.Parsed.DG2 != nil:
			t.AppendRow(table.Row{"EF.DG2 biometrics", len(f.Parsed.DG2.Biometrics)})
		case f.Parsed.DG5 != nil:
			t.AppendRow(table.Row{"EF.DG5 portraits", len(f.Parsed.DG5.DisplayedPortraits)})
		case f.Parsed.DG7 != nil:
			t.AppendRow(table.Row{"EF.DG7 signatures", len(f.Parsed.DG7.DisplayedSignatures)})
		}
	}
	t.Render()
}

func appendMRZRows(t table.Writer, dg1 *dgparse.EFDG1) {
	switch {
	case dg1.TD3 != nil:
		td3 := dg1.TD3
		t.AppendRow(table.Row{"Document code", mrz.DocumentTypeLabel(td3.DocumentCode, td3.IssuingState)})
		t.AppendRow(table.Row{"Name", td3.PrimaryIdentifier() + ", " + td3.GivenNames()})
		t.AppendRow(table.Row{"Document number", td3.DocumentNumber})
		t.AppendRow(table.Row{"Nationality", td3.Nationality})
		t.AppendRow(table.Row{"Date of birth", td3.DateOfBirth})
		t.AppendRow(table.Row{"Date of expiry", td3.DateOfExpiry})
		t.AppendRow(table.Row{"Sex", mrz.ParseMRZSex(td3.Sex)})
	case dg1.TD1 != nil:
		td1 := dg1.TD1
		t.AppendRow(table.Row{"Name", td1.PrimaryIdentifier() + ", " + td1.GivenNames()})
		t.AppendRow(table.Row{"Document number", td1.DocumentNumber})
	default:
		t.AppendRow(table.Row{"MRZ (unrecognized layout)", dg1.Raw})
	}
}

func countReadFiles(doc *orchestrator.Document) int {
	n := 0
	for _, f := range doc.Files {
		if len(f.Raw) > 0 {
			n++
		}
	}
	return n
}
