package dgparse

import (
	"fmt"

	"emrtd-reader/internal/bertlv"
)

const (
	tagEFDG5 = 0x65
	tagEFDG7 = 0x67

	tagDisplayedPortrait  = 0x5F40
	tagDisplayedSignature = 0x5F43
)

// EFDG5 holds the displayed-portrait images (ICAO 9303 part 10, 4.7.5).
type EFDG5 struct {
	DisplayedPortraits [][]byte
}

// ParseEFDG5 decodes a raw EF.DG5 file, outer tag 0x65.
func ParseEFDG5(data []byte) (*EFDG5, error) {
	images, ok, err := parseImageGroup(data, tagEFDG5, "EF.DG5", tagDisplayedPortrait)
	if err != nil || !ok {
		return nil, err
	}
	return &EFDG5{DisplayedPortraits: images}, nil
}

// EFDG7 holds the displayed-signature/usual-mark images (ICAO 9303 part 10,
// 4.7.7).
type EFDG7 struct {
	DisplayedSignatures [][]byte
}

// ParseEFDG7 decodes a raw EF.DG7 file, outer tag 0x67.
func ParseEFDG7(data []byte) (*EFDG7, error) {
	images, ok, err := parseImageGroup(data, tagEFDG7, "EF.DG7", tagDisplayedSignature)
	if err != nil || !ok {
		return nil, err
	}
	return &EFDG7{DisplayedSignatures: images}, nil
}

// parseImageGroup collects every child carrying pictureTag into an ordered
// slice of JPEG byte slices.
func parseImageGroup(data []byte, wantTag uint16, name string, pictureTag uint16) ([][]byte, bool, error) {
	t, ok, err := outerTLV(data, wantTag, name)
	if err != nil || !ok {
		return nil, ok, err
	}
	children, err := bertlv.Children(t)
	if err != nil {
		return nil, false, fmt.Errorf("dgparse: %s: %w", name, err)
	}

	var images [][]byte
	for _, c := range bertlv.ByTag(children, pictureTag) {
		v, err := bertlv.Value(c)
		if err != nil {
			return nil, false, fmt.Errorf("dgparse: %s: %w", name, err)
		}
		images = append(images, v)
	}
	return images, true, nil
}
