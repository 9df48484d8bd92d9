package dgparse

import (
	"encoding/binary"
	"fmt"

	"emrtd-reader/internal/bertlv"
	"emrtd-reader/internal/emrtderr"
	"emrtd-reader/internal/logging"
)

const (
	tagEFDG2                  = 0x75
	tagBiometricGroupTemplate = 0x7F61
	tagBiometricInfoTemplate  = 0x7F60
	tagBiometricHeaderTemplate = 0xA1
	tagISO19794Data           = 0x5F2E
	tagISO39794Data           = 0x7F2E

	tagHeaderVersion          = 0x80
	tagBiometricType          = 0x81
	tagBiometricSubType       = 0x82
	tagCreationTimestamp      = 0x83
	tagValidityPeriod         = 0x85
	tagCreatorOfBiometricData = 0x86
	tagFormatOwner            = 0x87
	tagFormatType             = 0x88
)

// BiometricImageFormat identifies the encoding of a Biometric's image data,
// per ISO/IEC 19794-5:2005 section 5.7.2.
type BiometricImageFormat byte

const (
	ImageFormatJPEG     BiometricImageFormat = 0x00
	ImageFormatJPEG2000 BiometricImageFormat = 0x01
	ImageFormatReserved BiometricImageFormat = 0x02
)

// Extension returns the file extension conventionally used to dump this
// image format.
func (f BiometricImageFormat) Extension() string {
	switch f {
	case ImageFormatJPEG:
		return "jpeg"
	case ImageFormatJPEG2000:
		return "jp2"
	default:
		return "image_bin"
	}
}

// Biometric is one Biometric Information Template: its header fields plus
// the extracted first representation's image bytes.
//
// Grounded on original_source/src/types.rs's Biometric struct and
// original_source/src/dg_parsers/helpers.rs's
// parse_biometric_info_template_group_template.
type Biometric struct {
	HeaderVersion          []byte
	BiometricType          []byte
	BiometricSubType       *byte
	CreationTimestamp      []byte
	ValidityPeriodFromThrough []byte
	CreatorOfBiometricData []byte
	FormatOwner            []byte
	FormatType             []byte
	Data                   []byte
	ImageFormat            BiometricImageFormat
}

// EFDG2 holds the encoded-face biometric group.
type EFDG2 struct {
	Biometrics []Biometric
}

// ParseEFDG2 decodes a raw EF.DG2 file, outer tag 0x75.
func ParseEFDG2(data []byte) (*EFDG2, error) {
	t, ok, err := outerTLV(data, tagEFDG2, "EF.DG2")
	if err != nil || !ok {
		return nil, err
	}
	children, err := bertlv.Children(t)
	if err != nil {
		return nil, fmt.Errorf("dgparse: EF.DG2: %w", err)
	}

	groups := bertlv.ByTag(children, tagBiometricGroupTemplate)
	if len(groups) == 0 {
		return nil, fmt.Errorf("dgparse: EF.DG2 has no biometric info template group (7F61)")
	}

	result := &EFDG2{}
	for _, group := range groups {
		biometrics, err := parseBiometricGroupTemplate(group)
		if err != nil {
			return nil, fmt.Errorf("dgparse: EF.DG2: %w", err)
		}
		result.Biometrics = append(result.Biometrics, biometrics...)
	}
	return result, nil
}

func parseBiometricGroupTemplate(group *bertlv.TLV) ([]Biometric, error) {
	groupChildren, err := bertlv.Children(group)
	if err != nil {
		return nil, err
	}

	var biometrics []Biometric
	for _, info := range bertlv.ByTag(groupChildren, tagBiometricInfoTemplate) {
		infoChildren, err := bertlv.Children(info)
		if err != nil {
			return nil, err
		}
		infoTags := bertlv.TagMap(infoChildren)

		b, ok, err := parseBiometricInfoTemplate(infoTags)
		if err != nil {
			return nil, err
		}
		if ok {
			biometrics = append(biometrics, b)
		}
	}
	return biometrics, nil
}

func parseBiometricInfoTemplate(infoTags map[uint16]*bertlv.TLV) (Biometric, bool, error) {
	var (
		imageData   []byte
		imageFormat = ImageFormatReserved
	)

	switch {
	case infoTags[tagISO19794Data] != nil:
		raw, err := bertlv.Value(infoTags[tagISO19794Data])
		if err != nil {
			return Biometric{}, false, err
		}
		data, format, ok, err := parseISO19794(raw)
		if err != nil {
			return Biometric{}, false, err
		}
		if !ok {
			return Biometric{}, false, nil
		}
		imageData, imageFormat = data, format
	case infoTags[tagISO39794Data] != nil:
		logging.Warnf("biometric info template uses ISO/IEC 39794 data, which is %v, skipping", emrtderr.ErrNotImplemented)
		return Biometric{}, false, nil
	default:
		logging.Warnf("biometric info template has neither 5F2E nor 7F2E data, skipping")
		return Biometric{}, false, nil
	}

	header, ok := infoTags[tagBiometricHeaderTemplate]
	if !ok {
		return Biometric{}, false, fmt.Errorf("biometric info template is missing its header template (A1)")
	}
	headerChildren, err := bertlv.Children(header)
	if err != nil {
		return Biometric{}, false, err
	}
	headerTags := bertlv.TagMap(headerChildren)

	formatOwner, ok := bytesValue(headerTags, tagFormatOwner)
	if !ok {
		return Biometric{}, false, fmt.Errorf("biometric header template is missing format owner (87)")
	}
	formatType, ok := bytesValue(headerTags, tagFormatType)
	if !ok {
		return Biometric{}, false, fmt.Errorf("biometric header template is missing format type (88)")
	}

	b := Biometric{
		FormatOwner: formatOwner,
		FormatType:  formatType,
		Data:        imageData,
		ImageFormat: imageFormat,
	}
	if v, ok := bytesValue(headerTags, tagHeaderVersion); ok {
		b.HeaderVersion = v
	}
	if v, ok := bytesValue(headerTags, tagBiometricType); ok {
		b.BiometricType = v
	}
	if v, ok := byteValue(headerTags, tagBiometricSubType); ok {
		b.BiometricSubType = &v
	}
	if v, ok := bytesValue(headerTags, tagCreationTimestamp); ok {
		b.CreationTimestamp = v
	}
	if v, ok := bytesValue(headerTags, tagValidityPeriod); ok {
		b.ValidityPeriodFromThrough = v
	}
	if v, ok := bytesValue(headerTags, tagCreatorOfBiometricData); ok {
		b.CreatorOfBiometricData = v
	}
	return b, true, nil
}

// parseISO19794 extracts the first biometric representation's image bytes
// and format from an ISO/IEC 19794-5:2005 record. Only the 2005 variant is
// supported, matching what ICAO 9303 requires of the first biometric.
func parseISO19794(raw []byte) (data []byte, format BiometricImageFormat, ok bool, err error) {
	if len(raw) < 14 {
		return nil, 0, false, fmt.Errorf("ISO/IEC 19794 record too short for its general header (%d bytes)", len(raw))
	}
	if string(raw[4:8]) != "010\x00" {
		logging.Warnf("biometric has unsupported ISO/IEC 19794 version %x, skipping", raw[4:8])
		return nil, 0, false, nil
	}

	numRepresentations := binary.BigEndian.Uint16(raw[12:14])
	if numRepresentations != 1 {
		logging.Warnf("expected one biometric representation, found %d; only the first is decoded", numRepresentations)
	}

	const repStart = 14
	if len(raw) < repStart+6 {
		return nil, 0, false, fmt.Errorf("ISO/IEC 19794 record too short for its representation header")
	}
	repLength := binary.BigEndian.Uint32(raw[repStart : repStart+4])
	featurePointCount := binary.BigEndian.Uint16(raw[repStart+4 : repStart+6])
	repHeaderLength := 20 + 8*uint32(featurePointCount) + 12

	dataStart := repStart + int(repHeaderLength)
	dataEnd := repStart + int(repLength)
	if dataStart > dataEnd || dataEnd > len(raw) {
		return nil, 0, false, fmt.Errorf("ISO/IEC 19794 representation bounds [%d:%d] exceed record length %d", dataStart, dataEnd, len(raw))
	}

	formatByteOffset := 36 + 8*int(featurePointCount)
	if formatByteOffset >= len(raw) {
		return nil, 0, false, fmt.Errorf("ISO/IEC 19794 image format byte at offset %d exceeds record length %d", formatByteOffset, len(raw))
	}
	formatByte := raw[formatByteOffset]

	imgFormat := ImageFormatReserved
	switch formatByte {
	case 0x00:
		imgFormat = ImageFormatJPEG
	case 0x01:
		imgFormat = ImageFormatJPEG2000
	}

	return raw[dataStart:dataEnd], imgFormat, true, nil
}
