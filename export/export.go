// Package export writes read Elementary Files and the images embedded in
// them to disk, per spec §6.3's on-disk layout. Grounded on
// original_source/src/dg_parsers/generic.rs's dumper (raw-blob write) and
// ef_dg5.rs/ef_dg7.rs's per-picture dumpers, in the file-write style
// (os.Create, explicit Sync) the teacher uses wherever it persists data to
// disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"emrtd-reader/dgparse"
	"emrtd-reader/orchestrator"
)

// Dumper writes a Document's files (and the images inside EF.DG2/DG5/DG7)
// under Dir, named by Distinguisher.
type Dumper struct {
	Dir           string
	Distinguisher string
}

// Dump writes doc's raw files and embedded images, returning the first
// error encountered (after attempting every file — one bad write should not
// hide the rest).
func (d Dumper) Dump(doc *orchestrator.Document) error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, f := range doc.Files {
		if len(f.Raw) == 0 {
			continue
		}
		base := d.baseFilename(f.DataGroup.Name)
		if err := writeFile(d.Dir, base+".bin", f.Raw); err != nil {
			note(fmt.Errorf("dumping %s: %w", f.DataGroup.Name, err))
			continue
		}

		switch {
		case f.Parsed.DG2 != nil:
			note(d.dumpDG2Images(base, f.Parsed.DG2))
		case f.Parsed.DG5 != nil:
			note(d.dumpPictures(base, f.Parsed.DG5.DisplayedPortraits))
		case f.Parsed.DG7 != nil:
			note(d.dumpPictures(base, f.Parsed.DG7.DisplayedSignatures))
		}
	}
	return firstErr
}

// baseFilename renders "<distinguisher>-<name>" with dots replaced by
// underscores, per spec §6.3 (e.g. "L898902C3-EF_DG1").
func (d Dumper) baseFilename(name string) string {
	return fmt.Sprintf("%s-%s", d.Distinguisher, strings.ReplaceAll(name, ".", "_"))
}

func (d Dumper) dumpDG2Images(base string, dg2 *dgparse.EFDG2) error {
	var firstErr error
	for i, b := range dg2.Biometrics {
		name := fmt.Sprintf("%s-pic%d.%s", base, i+1, b.ImageFormat.Extension())
		if err := writeFile(d.Dir, name, b.Data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dumping %s biometric #%d: %w", base, i+1, err)
		}
	}
	return firstErr
}

func (d Dumper) dumpPictures(base string, pictures [][]byte) error {
	var firstErr error
	for i, pic := range pictures {
		name := fmt.Sprintf("%s-pic%d.jpeg", base, i+1)
		if err := writeFile(d.Dir, name, pic); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dumping %s picture #%d: %w", base, i+1, err)
		}
	}
	return firstErr
}

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
