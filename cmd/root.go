package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emrtd-reader/card"
	"emrtd-reader/internal/logging"
	"emrtd-reader/output"
)

var (
	version = "1.0.0"

	// Global flags
	readerName string
	outputJSON bool
	prettyOut  bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "emrtd",
	Short: "ICAO 9303 eMRTD reader",
	Long: `emrtd v` + version + `

Reads an ICAO 9303 electronic machine-readable travel document (ePassport,
eID card) over PC/SC: Basic Access Control, Secure Messaging, and the LDS1
data groups (MRZ, biometrics, additional details).`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&readerName, "reader", "",
		"reader device path/name substring (autodetects the sole connected reader otherwise)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false,
		"emit the parsed document summary as JSON on stdout")
	rootCmd.PersistentFlags().BoolVar(&prettyOut, "pretty", false,
		"render the document summary as a table instead of structured log lines")
	rootCmd.PersistentFlags().StringVar(&logLevel, "level", "info",
		"logging threshold: trace|debug|info|warn|error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel maps --level onto the logging package's filter. Called from
// the read command's RunE, once flags are parsed.
func applyLogLevel() {
	switch logLevel {
	case "trace", "debug":
		logging.Level = logging.LevelDebug
	case "info":
		logging.Level = logging.LevelInfo
	case "warn":
		logging.Level = logging.LevelWarn
	case "error":
		logging.Level = logging.LevelError
	default:
		logging.Warnf("unrecognized --level %q, defaulting to info", logLevel)
		logging.Level = logging.LevelInfo
	}
}

// connectReader connects to the reader named by --reader, or autodetects
// the sole connected reader, mirroring the teacher's
// connectAndPrepareReader auto-select fallback.
func connectReader() (*card.Reader, error) {
	if readerName != "" {
		return card.ConnectMatching(readerName)
	}

	readers, err := card.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("listing readers: %w", err)
	}
	if len(readers) == 0 {
		return nil, fmt.Errorf("no smart card readers found")
	}
	if len(readers) > 1 {
		output.PrintReaderList(readers)
		return nil, fmt.Errorf("multiple readers found, use --reader <name> to select one")
	}

	if !outputJSON {
		output.PrintSuccess(fmt.Sprintf("Auto-selected reader: %s", readers[0]))
	}
	return card.Connect(readers[0])
}
