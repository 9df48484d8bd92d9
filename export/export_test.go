package export

import (
	"os"
	"path/filepath"
	"testing"

	"emrtd-reader/dgparse"
	"emrtd-reader/icao9303"
	"emrtd-reader/orchestrator"
)

func TestDumpWritesRawFileAndBiometricImages(t *testing.T) {
	dir := t.TempDir()
	d := Dumper{Dir: dir, Distinguisher: "L898902C3"}

	doc := &orchestrator.Document{
		Files: []orchestrator.FileResult{
			{
				DataGroup: icao9303.Catalog["EF.DG1"],
				Raw:       []byte("raw-dg1-bytes"),
			},
			{
				DataGroup: icao9303.Catalog["EF.DG2"],
				Raw:       []byte("raw-dg2-bytes"),
				Parsed: dgparse.ParsedDataGroup{
					DG2: &dgparse.EFDG2{Biometrics: []dgparse.Biometric{
						{Data: []byte{0xFF, 0xD8}, ImageFormat: dgparse.ImageFormatJPEG},
						{Data: []byte{0x00, 0x01}, ImageFormat: dgparse.ImageFormatJPEG2000},
					}},
				},
			},
			{
				DataGroup: icao9303.Catalog["EF.CardAccess"],
				Raw:       nil, // unreadable file must not produce an empty dump
			},
		},
	}

	if err := d.Dump(doc); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	mustExist := []string{
		"L898902C3-EF_DG1.bin",
		"L898902C3-EF_DG2.bin",
		"L898902C3-EF_DG2-pic1.jpeg",
		"L898902C3-EF_DG2-pic2.jp2",
	}
	for _, name := range mustExist {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "L898902C3-EF_CardAccess.bin")); err == nil {
		t.Errorf("unreadable EF.CardAccess must not produce a dump file")
	}
}

func TestDumpDG5WritesOnePictureFilePerPortrait(t *testing.T) {
	dir := t.TempDir()
	d := Dumper{Dir: dir, Distinguisher: "X1"}

	doc := &orchestrator.Document{
		Files: []orchestrator.FileResult{
			{
				DataGroup: icao9303.Catalog["EF.DG5"],
				Raw:       []byte("raw-dg5"),
				Parsed: dgparse.ParsedDataGroup{
					DG5: &dgparse.EFDG5{DisplayedPortraits: [][]byte{{0x01}, {0x02}}},
				},
			},
		},
	}

	if err := d.Dump(doc); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	for _, name := range []string{"X1-EF_DG5.bin", "X1-EF_DG5-pic1.jpeg", "X1-EF_DG5-pic2.jpeg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}
