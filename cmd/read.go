package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emrtd-reader/bac"
	"emrtd-reader/export"
	"emrtd-reader/internal/emrtderr"
	"emrtd-reader/internal/logging"
	"emrtd-reader/orchestrator"
	"emrtd-reader/output"
)

var (
	dateOfBirth  string
	dateOfExpiry string
	documentNum  string
	can          string
	dumpPath     string
	dumpEnabled  bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Connect, authenticate, and read an eMRTD",
	Long: `Connects to a PC/SC reader, runs Basic Access Control against the
inserted document using the MRZ inputs, reads the full LDS1 data group
catalog, and prints a summary.

Examples:
  emrtd read --num L898902C3 --dob 690806 --doe 940623
  emrtd read --num L898902C3 --dob 690806 --doe 940623 --pretty
  emrtd read --num L898902C3 --dob 690806 --doe 940623 --dump ./out`,
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVar(&dateOfBirth, "dob", "", "date of birth, YYMMDD")
	readCmd.Flags().StringVar(&dateOfExpiry, "doe", "", "date of expiry, YYMMDD")
	readCmd.Flags().StringVar(&documentNum, "num", "", "document number")
	readCmd.Flags().StringVar(&can, "can", "", "CAN for PACE (reserved, not implemented)")
	readCmd.Flags().StringVar(&dumpPath, "dump", "", "enable file dump; defaults to the current directory when the flag is bare")
	readCmd.Flags().Lookup("dump").NoOptDefVal = "."

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	dumpEnabled = cmd.Flags().Changed("dump")

	if can != "" {
		return fmt.Errorf("%w: PACE (--can) is not implemented", emrtderr.ErrNotImplemented)
	}
	if dateOfBirth == "" || dateOfExpiry == "" || documentNum == "" {
		return fmt.Errorf("--num, --dob and --doe are all required (no --can provided)")
	}

	reader, err := connectReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	if !outputJSON {
		output.PrintReaderInfo(reader.Name(), reader.ATRHex())
	}

	key := bac.MRZKey{
		DocumentNumber: documentNum,
		DateOfBirth:    dateOfBirth,
		DateOfExpiry:   dateOfExpiry,
	}

	if !outputJSON {
		output.PrintSuccess("Running Basic Access Control and reading data groups...")
	}
	doc, err := orchestrator.Run(reader, key)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	if dumpEnabled {
		if dumpPath == "" {
			dumpPath = "."
		}
		d := export.Dumper{Dir: dumpPath, Distinguisher: documentNum}
		if err := d.Dump(doc); err != nil {
			logging.Warnf("dumping files: %v", err)
		} else if !outputJSON {
			output.PrintSuccess(fmt.Sprintf("Dumped files to %s", dumpPath))
		}
	}

	switch {
	case outputJSON:
		return printJSON(doc)
	case prettyOut:
		output.PrintDocumentSummary(doc)
	default:
		logging.Infof("read %d file(s), PACE available: %v", len(doc.Files), doc.PaceAvailable)
		for _, f := range doc.Files {
			if len(f.Raw) == 0 {
				continue
			}
			logging.Infof("  %s: %d bytes — %s", f.DataGroup.Name, len(f.Raw), f.Parsed.String())
		}
	}

	if !outputJSON {
		output.PrintSuccess("Done!")
	}
	return nil
}

// documentSummary is the JSON shape printed by --json: the raw data group
// catalog entries this run read, omitting binary payloads (use --dump for
// those) in favor of the decoded fields.
type documentSummary struct {
	PaceAvailable bool                   `json:"pace_available"`
	Files         []documentFileSummary  `json:"files"`
}

type documentFileSummary struct {
	Name   string `json:"name"`
	Bytes  int    `json:"bytes"`
	Parsed string `json:"parsed,omitempty"`
}

func printJSON(doc *orchestrator.Document) error {
	summary := documentSummary{PaceAvailable: doc.PaceAvailable}
	for _, f := range doc.Files {
		if len(f.Raw) == 0 {
			continue
		}
		entry := documentFileSummary{Name: f.DataGroup.Name, Bytes: len(f.Raw)}
		if !f.Parsed.IsEmpty() {
			entry.Parsed = f.Parsed.String()
		}
		summary.Files = append(summary.Files, entry)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
