// Package orchestrator drives the two-phase eMRTD read described in
// spec §4.6: Phase A reads the Master File's non-LDS1 catalog entries
// unsecured, Phase B selects the LDS1 applet, runs BAC, and reads every
// catalog entry EF.COM's tag list declares.
//
// Grounded on original_source/src/helpers.rs's read_file/secure_read_file
// shape (select, read, parse, optionally dump) and cmd/root.go's
// connectAndPrepareReader sequencing pattern (connect, authenticate, then
// hand a ready session to the command body), adapted from GlobalPlatform's
// single-phase PIN/ADM flow to BAC's two-phase Master-File/LDS1 flow.
package orchestrator

import (
	"fmt"

	"emrtd-reader/bac"
	"emrtd-reader/dgparse"
	"emrtd-reader/icao9303"
	"emrtd-reader/internal/apdu"
	"emrtd-reader/internal/filereader"
	"emrtd-reader/internal/logging"
)

// FileResult is one read Elementary File: its catalog descriptor, the raw
// bytes (nil if unreadable), and the parsed variant (empty if there was no
// parser or the outer tag did not match).
type FileResult struct {
	DataGroup icao9303.DataGroup
	Raw       []byte
	Parsed    dgparse.ParsedDataGroup
}

// Document is the accumulated result of a full read: every file the
// orchestrator attempted, whether PACE-capable security infos were
// present, and the established BAC session (nil if Phase B never ran).
type Document struct {
	Files         []FileResult
	PaceAvailable bool
	Channel       *apdu.SecureChannel
}

// Run executes both phases against t using key for BAC, per spec §4.6.
func Run(t apdu.Transport, key bac.MRZKey) (*Document, error) {
	doc := &Document{}

	if err := runPhaseA(t, doc); err != nil {
		return doc, fmt.Errorf("orchestrator: phase A: %w", err)
	}

	if err := runPhaseB(t, key, doc); err != nil {
		return doc, fmt.Errorf("orchestrator: phase B: %w", err)
	}

	return doc, nil
}

// runPhaseA probes EF.CardAccess and reads every Master-File catalog entry
// (in_lds1=false), skipping EF.CardAccess itself and any pace_only entry
// unless PACE security infos were found to be present.
func runPhaseA(t apdu.Transport, doc *Document) error {
	if raw, present, err := filereader.SelectAndRead(t, icao9303.Catalog["EF.CardAccess"].FileID); err != nil {
		logging.Warnf("probing EF.CardAccess: %v", err)
	} else if present && len(raw) > 0 {
		doc.PaceAvailable = true
	}

	for name, dg := range icao9303.Catalog {
		if dg.InLDS1 || name == "EF.CardAccess" {
			continue
		}
		if dg.PaceOnly && !doc.PaceAvailable {
			continue
		}
		doc.Files = append(doc.Files, readAndParse(dg, func(fileID uint16) ([]byte, bool, error) {
			return filereader.SelectAndRead(t, fileID)
		}))
	}
	return nil
}

// runPhaseB selects the LDS1 applet, runs BAC, reads EF.COM under Secure
// Messaging, and reads every catalog entry whose tag EF.COM declares.
func runPhaseB(t apdu.Transport, key bac.MRZKey, doc *Document) error {
	selResp, err := apdu.Exchange(t, apdu.Command{CLA: 0x00, INS: apdu.InsSelect, P1: 0x04, P2: 0x0C, Data: icao9303.AIDMRTDLDS1})
	if err != nil {
		return fmt.Errorf("selecting LDS1 applet: %w", err)
	}
	if !selResp.IsOK() {
		return fmt.Errorf("selecting LDS1 applet: %s", apdu.SWToString(selResp.SW()))
	}

	sc, err := bac.Run(t, key)
	if err != nil {
		return fmt.Errorf("BAC: %w", err)
	}
	doc.Channel = sc

	secureRead := func(fileID uint16) ([]byte, bool, error) {
		return filereader.SecureSelectAndRead(t, sc, fileID)
	}

	efCom := icao9303.Catalog["EF.COM"]
	comResult := readAndParse(efCom, secureRead)
	doc.Files = append(doc.Files, comResult)
	if comResult.Parsed.EFCom == nil {
		return fmt.Errorf("EF.COM did not decode; cannot determine which data groups are present")
	}

	present := make(map[uint16]bool, len(comResult.Parsed.EFCom.DataGroupTags))
	for _, tag := range comResult.Parsed.EFCom.DataGroupTags {
		present[uint16(tag)] = true
	}

	for name, dg := range icao9303.Catalog {
		if !dg.InLDS1 || name == "EF.COM" || dg.PaceOnly || dg.EACOnly {
			continue
		}
		if !present[dg.Tag] {
			continue
		}
		doc.Files = append(doc.Files, readAndParse(dg, secureRead))
	}
	return nil
}

// readAndParse reads dg's file via read, logging (not failing) on a read
// error or a parse error — one bad file must not abort the whole document.
func readAndParse(dg icao9303.DataGroup, read func(uint16) ([]byte, bool, error)) FileResult {
	raw, present, err := read(dg.FileID)
	if err != nil {
		logging.Warnf("reading %s: %v", dg.Name, err)
		return FileResult{DataGroup: dg}
	}
	if !present || len(raw) == 0 {
		return FileResult{DataGroup: dg}
	}

	result := FileResult{DataGroup: dg, Raw: raw}
	if dg.IsBinary {
		return result
	}

	parsed, err := dgparse.Parse(dg.Name, raw)
	if err != nil {
		logging.Warnf("parsing %s: %v", dg.Name, err)
		return result
	}
	result.Parsed = parsed
	return result
}
