// Package icao9303 holds the static descriptor table for the ICAO 9303
// Elementary Files this reader knows about: tags, file IDs, and the access
// flags the orchestrator uses to decide which phase reads which file.
//
// Tag and file-ID values are grounded on the reference decoder's DATA_GROUPS
// table (original_source/src/icao9303.rs) and restructured here the way the
// teacher lays out its own per-applet file tables (sim/files.go's
// MF_Files/USIM_Files maps of file-id -> descriptor).
package icao9303

// AIDMRTDLDS1 is the LDS1 applet AID selected in Phase B before running BAC.
var AIDMRTDLDS1 = []byte{0xA0, 0x00, 0x00, 0x02, 0x47, 0x10, 0x01}

// DataGroup describes one Elementary File: its outer BER-TLV tag (0xFF when
// the file carries no outer template), its short file identifier, and the
// access-class flags the orchestrator consults.
type DataGroup struct {
	Name        string
	Tag         uint16
	FileID      uint16
	Description string
	PaceOnly    bool // only readable after PACE; this implementation never performs PACE
	EACOnly     bool // requires Extended Access Control; always skipped
	InLDS1      bool // true: lives under the LDS1 applet; false: under the Master File
	IsBinary    bool // true: value is opaque bytes whose dump is the point, not decoding
}

// NoOuterTag marks files with no outer BER-TLV template (e.g. EF.CardAccess).
const NoOuterTag uint16 = 0xFF

// Catalog is the process-wide immutable table of known Elementary Files,
// keyed by short name. File IDs and tags match ICAO 9303 exactly.
var Catalog = map[string]DataGroup{
	"EF.COM": {
		Name: "EF.COM", Tag: 0x60, FileID: 0x011E,
		Description: "Common data elements", InLDS1: true,
	},
	"EF.CardAccess": {
		Name: "EF.CardAccess", Tag: NoOuterTag, FileID: 0x011C,
		Description: "PACE security info (opaque probe only)", PaceOnly: true,
	},
	"EF.CardSecurity": {
		Name: "EF.CardSecurity", Tag: NoOuterTag, FileID: 0x011D,
		Description: "Chip Authentication security info", PaceOnly: true,
	},
	"EF.ATR/INFO": {
		Name: "EF.ATR/INFO", Tag: NoOuterTag, FileID: 0x2F01,
		Description: "ATR/INFO file", IsBinary: true,
	},
	"EF.DIR": {
		Name: "EF.DIR", Tag: NoOuterTag, FileID: 0x2F00,
		Description: "Application directory", IsBinary: true,
	},
	"EF.DG1": {
		Name: "EF.DG1", Tag: 0x61, FileID: 0x0101,
		Description: "Machine Readable Zone", InLDS1: true,
	},
	"EF.DG2": {
		Name: "EF.DG2", Tag: 0x75, FileID: 0x0102,
		Description: "Encoded face", InLDS1: true,
	},
	"EF.DG3": {
		Name: "EF.DG3", Tag: 0x63, FileID: 0x0103,
		Description: "Encoded finger(s)", EACOnly: true, InLDS1: true, IsBinary: true,
	},
	"EF.DG4": {
		Name: "EF.DG4", Tag: 0x76, FileID: 0x0104,
		Description: "Encoded iris(es)", EACOnly: true, InLDS1: true, IsBinary: true,
	},
	"EF.DG5": {
		Name: "EF.DG5", Tag: 0x65, FileID: 0x0105,
		Description: "Displayed portrait", InLDS1: true,
	},
	"EF.DG6": {
		Name: "EF.DG6", Tag: 0x66, FileID: 0x0106,
		Description: "Reserved for future use", InLDS1: true, IsBinary: true,
	},
	"EF.DG7": {
		Name: "EF.DG7", Tag: 0x67, FileID: 0x0107,
		Description: "Displayed signature or usual mark", InLDS1: true,
	},
	"EF.DG8": {
		Name: "EF.DG8", Tag: 0x68, FileID: 0x0108,
		Description: "Data feature(s)", InLDS1: true, IsBinary: true,
	},
	"EF.DG9": {
		Name: "EF.DG9", Tag: 0x69, FileID: 0x0109,
		Description: "Structure feature(s)", InLDS1: true, IsBinary: true,
	},
	"EF.DG10": {
		Name: "EF.DG10", Tag: 0x6A, FileID: 0x010A,
		Description: "Substance feature(s)", InLDS1: true, IsBinary: true,
	},
	"EF.DG11": {
		Name: "EF.DG11", Tag: 0x6B, FileID: 0x010B,
		Description: "Additional personal detail(s)", InLDS1: true,
	},
	"EF.DG12": {
		Name: "EF.DG12", Tag: 0x6C, FileID: 0x010C,
		Description: "Additional document detail(s)", InLDS1: true,
	},
	"EF.DG13": {
		Name: "EF.DG13", Tag: 0x6D, FileID: 0x010D,
		Description: "Optional detail(s)", InLDS1: true, IsBinary: true,
	},
	"EF.DG14": {
		Name: "EF.DG14", Tag: 0x6E, FileID: 0x010E,
		Description: "Security options (Chip Authentication info)", InLDS1: true, IsBinary: true,
	},
	"EF.DG15": {
		Name: "EF.DG15", Tag: 0x6F, FileID: 0x010F,
		Description: "Active Authentication public key", InLDS1: true, IsBinary: true,
	},
	"EF.DG16": {
		Name: "EF.DG16", Tag: 0x70, FileID: 0x0110,
		Description: "Person(s) to notify", InLDS1: true, IsBinary: true,
	},
	"EF.SOD": {
		Name: "EF.SOD", Tag: 0x77, FileID: 0x011D,
		Description: "Document Security Object", InLDS1: true, IsBinary: true,
	},
}

// ByTag returns the catalog entry whose outer tag matches tag, if any. Used
// by the orchestrator to map EF.COM's data-group tag list back to catalog
// entries.
func ByTag(tag uint16) (DataGroup, bool) {
	for _, dg := range Catalog {
		if dg.Tag == tag {
			return dg, true
		}
	}
	return DataGroup{}, false
}
