package orchestrator

import (
	"bytes"
	"crypto/rand"
	"testing"

	"emrtd-reader/bac"
	"emrtd-reader/icao9303"
	"emrtd-reader/internal/apdu"
	"emrtd-reader/internal/bertlv"
	"emrtd-reader/internal/cryptoprim"
)

// tlv builds a short-form BER-TLV encoding for test fixtures (single-byte
// tags, values under 128 bytes — enough for the small fixtures below).
func tlv(tag byte, value []byte) []byte {
	out := []byte{tag, byte(len(value))}
	return append(out, value...)
}

// fakeCard simulates a PC/SC-connected eMRTD chip: unsecured SELECT/READ
// BINARY against the Master File before BAC, the BAC handshake itself, and
// Secure-Messaging-wrapped SELECT/READ BINARY against the LDS1 applet
// afterward. It answers the BAC handshake the way bac_test.go's fakeChip
// does, and additionally keeps the card-side SSC so it can unwrap/wrap full
// command and response APDUs instead of a single canned response.
type fakeCard struct {
	mfFiles   map[uint16][]byte
	lds1Files map[uint16][]byte

	context       string // "MF" or "LDS1"
	selectedFile  uint16

	rndIC []byte
	kEnc  []byte // BAC session establishment keys
	kMac  []byte

	established bool // BAC completed; subsequent READ/SELECT are SM-wrapped
	ksEnc       []byte
	ksMac       []byte
	ssc         uint64
}

func newFakeCard(seed []byte) *fakeCard {
	rndIC := make([]byte, 8)
	rand.Read(rndIC)
	return &fakeCard{
		mfFiles:   map[uint16][]byte{},
		lds1Files: map[uint16][]byte{},
		context:   "MF",
		rndIC:     rndIC,
		kEnc:      cryptoprim.KDF(seed, 1),
		kMac:      cryptoprim.KDF(seed, 2),
	}
}

func (c *fakeCard) currentFile() []byte {
	if c.context == "LDS1" {
		return c.lds1Files[c.selectedFile]
	}
	return c.mfFiles[c.selectedFile]
}

func (c *fakeCard) Transmit(raw []byte) ([]byte, error) {
	cla, ins, p1, p2 := raw[0], raw[1], raw[2], raw[3]
	if cla&0x0C == 0x0C {
		return c.transmitSecured(raw)
	}

	// Command.Encode lays out (Lc, Data) only when Data is non-empty and a
	// trailing Le byte only when Le is non-zero — which of those apply
	// depends on the instruction, not on the raw length alone (SELECT
	// FILE always carries Data and no Le; READ BINARY/GET CHALLENGE carry
	// only Le; EXTERNAL AUTHENTICATE carries both).
	var data []byte
	le := 0
	rest := raw[4:]
	switch ins {
	case apdu.InsSelect:
		if len(rest) > 0 {
			lc := int(rest[0])
			data = rest[1 : 1+lc]
		}
	case apdu.InsReadBinary, apdu.InsGetChallenge:
		if len(rest) > 0 {
			le = int(rest[0])
			if le == 0 {
				le = 256
			}
		}
	case apdu.InsExternalAuthenticate:
		lc := int(rest[0])
		data = rest[1 : 1+lc]
		if len(rest) > 1+lc {
			le = int(rest[1+lc])
			if le == 0 {
				le = 256
			}
		}
	}

	respData, sw1, sw2 := c.dispatch(ins, p1, p2, data, le)
	return append(append([]byte{}, respData...), sw1, sw2), nil
}

func (c *fakeCard) dispatch(ins, p1, p2 byte, data []byte, le int) (respData []byte, sw1, sw2 byte) {
	switch ins {
	case apdu.InsSelect:
		if p1 == 0x02 && p2 == 0x0C && len(data) == 2 {
			fileID := uint16(data[0])<<8 | uint16(data[1])
			files := c.mfFiles
			if c.context == "LDS1" {
				files = c.lds1Files
			}
			if _, ok := files[fileID]; !ok {
				return nil, 0x6A, 0x82
			}
			c.selectedFile = fileID
			return nil, 0x90, 0x00
		}
		if p1 == 0x04 && p2 == 0x0C && bytes.Equal(data, icao9303.AIDMRTDLDS1) {
			c.context = "LDS1"
			return nil, 0x90, 0x00
		}
		return nil, 0x6A, 0x82
	case apdu.InsReadBinary:
		offset := int(p1)<<8 | int(p2)
		file := c.currentFile()
		if file == nil {
			return nil, 0x6A, 0x82
		}
		if offset >= len(file) {
			return nil, 0x6A, 0x82
		}
		end := offset + le
		if end > len(file) {
			end = len(file)
		}
		return file[offset:end], 0x90, 0x00
	case apdu.InsGetChallenge:
		return append([]byte{}, c.rndIC...), 0x90, 0x00
	case apdu.InsExternalAuthenticate:
		eIFD := data[0:32]
		mIFD := data[32:40]
		expectedMAC, err := cryptoprim.RetailMAC(c.kMac, make([]byte, 8), eIFD)
		if err != nil || !bytes.Equal(expectedMAC, mIFD) {
			return nil, 0x69, 0x82
		}
		plain, err := cryptoprim.TripleDESCBCDecrypt(c.kEnc, eIFD)
		if err != nil {
			return nil, 0x69, 0x82
		}
		rndIFD := plain[0:8]
		kIFD := plain[16:32]
		kIC := make([]byte, 16)
		rand.Read(kIC)

		response := append(append(append([]byte{}, c.rndIC...), rndIFD...), kIC...)
		eIC, err := cryptoprim.TripleDESCBCEncrypt(c.kEnc, response)
		if err != nil {
			return nil, 0x69, 0x82
		}
		mIC, err := cryptoprim.RetailMAC(c.kMac, make([]byte, 8), eIC)
		if err != nil {
			return nil, 0x69, 0x82
		}

		sessionSeed := xor(kIFD, kIC)
		c.ksEnc = cryptoprim.KDF(sessionSeed, 1)
		c.ksMac = cryptoprim.KDF(sessionSeed, 2)
		var ssc [8]byte
		copy(ssc[0:4], c.rndIC[4:8])
		copy(ssc[4:8], rndIFD[4:8])
		c.ssc = beUint64(ssc[:])
		c.established = true
		c.context = "LDS1"

		return append(append([]byte{}, eIC...), mIC...), 0x90, 0x00
	default:
		return nil, 0x6D, 0x00
	}
}

func (c *fakeCard) transmitSecured(raw []byte) ([]byte, error) {
	cla, ins, p1, p2 := raw[0]&^0x0C, raw[1], raw[2], raw[3]
	lc := int(raw[4])
	body := raw[5 : 5+lc]

	c.ssc++
	tlvs, err := parseConcatenated(body)
	if err != nil {
		return nil, err
	}
	byTag := bertlv.TagMap(tlvs)

	do8e, ok := byTag[0x8E]
	if !ok {
		return nil, errNoMAC
	}
	var macInput []byte
	header := []byte{cla | 0x0C, ins, p1, p2}
	macInput = append(macInput, ssc8(c.ssc)...)
	macInput = append(macInput, cryptoprim.PadMethod2(header)...)
	if do87, ok := byTag[0x87]; ok {
		macInput = append(macInput, encodeTLV(0x87, do87.Value)...)
	}
	if do97, ok := byTag[0x97]; ok {
		macInput = append(macInput, encodeTLV(0x97, do97.Value)...)
	}
	expectedMAC, err := cryptoprim.RetailMAC(c.ksMac, make([]byte, 8), macInput)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(expectedMAC, do8e.Value) {
		return append([]byte{0x69, 0x88}), nil
	}

	var innerData []byte
	if do87, ok := byTag[0x87]; ok {
		plain, err := cryptoprim.TripleDESCBCDecrypt(c.ksEnc, do87.Value[1:])
		if err != nil {
			return nil, err
		}
		innerData, err = cryptoprim.UnpadMethod2(plain)
		if err != nil {
			return nil, err
		}
	}
	le := 0
	if do97, ok := byTag[0x97]; ok && len(do97.Value) > 0 {
		le = int(do97.Value[0])
		if le == 0 {
			le = 256
		}
	}

	respData, sw1, sw2 := c.dispatch(ins, p1, p2, innerData, le)

	c.ssc++
	var secureParts []byte
	if len(respData) > 0 {
		enc, err := cryptoprim.TripleDESCBCEncrypt(c.ksEnc, cryptoprim.PadMethod2(respData))
		if err != nil {
			return nil, err
		}
		secureParts = append(secureParts, encodeTLV(0x87, append([]byte{0x01}, enc...))...)
	}
	do99 := []byte{sw1, sw2}
	secureParts = append(secureParts, encodeTLV(0x99, do99)...)

	macInput2 := append(ssc8(c.ssc), secureParts...)
	mac, err := cryptoprim.RetailMAC(c.ksMac, make([]byte, 8), macInput2)
	if err != nil {
		return nil, err
	}
	secureParts = append(secureParts, encodeTLV(0x8E, mac)...)

	return append(secureParts, sw1, sw2), nil
}

var errNoMAC = bytesErr("fakeCard: secured command missing MAC")

type bytesErr string

func (e bytesErr) Error() string { return string(e) }

func parseConcatenated(data []byte) ([]*bertlv.TLV, error) {
	var out []*bertlv.TLV
	rest := data
	for len(rest) > 0 {
		t, tail, err := bertlv.Parse(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		rest = tail
	}
	return out, nil
}

func encodeTLV(tag byte, value []byte) []byte {
	out := []byte{tag}
	if len(value) <= 0x7F {
		out = append(out, byte(len(value)))
	} else {
		out = append(out, 0x81, byte(len(value)))
	}
	return append(out, value...)
}

func ssc8(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * uint(i)))
	}
	return b[:]
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// TestRunReadsOnlyDeclaredTags is the simulated-card coverage test for
// spec §8's universal invariant 5: the orchestrator reads every LDS1 file
// whose tag EF.COM declares and no file whose tag it does not.
func TestRunReadsOnlyDeclaredTags(t *testing.T) {
	key := bac.MRZKey{DocumentNumber: "L898902C3", DateOfBirth: "690806", DateOfExpiry: "940623"}
	seed := cryptoprim.SHA1([]byte(key.KMRZ()))[:16]
	card := newFakeCard(seed)

	mrzText := "P<D<<MUSTERMANN<<ERIKA<<<<<<<<<<<<<<<<<<<<<<C11T002JM4D<<6408125F2702283<<<<<<<<<<<<<<<2"
	dg1Bytes := tlv(0x61, tlv(0x5C, []byte(mrzText)))
	dg11Bytes := tlv(0x6B, tlv(0x5C, []byte("MUSTERMANN<<ERIKA")))
	tagList := []byte{0x61, 0x6B} // DG1 and DG11 only — DG2/DG5/DG7/DG12 absent
	comInner := tlv(0x5C, tagList)
	comBytes := tlv(0x60, comInner)

	card.lds1Files[icao9303.Catalog["EF.COM"].FileID] = comBytes
	card.lds1Files[icao9303.Catalog["EF.DG1"].FileID] = dg1Bytes
	card.lds1Files[icao9303.Catalog["EF.DG11"].FileID] = dg11Bytes

	doc, err := Run(card, key)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	seen := map[string][]byte{}
	for _, f := range doc.Files {
		seen[f.DataGroup.Name] = f.Raw
	}

	if seen["EF.DG1"] == nil {
		t.Fatalf("expected EF.DG1 to be read (its tag 0x61 is in EF.COM's tag list)")
	}
	if seen["EF.DG11"] == nil {
		t.Fatalf("expected EF.DG11 to be read (its tag 0x6B is in EF.COM's tag list)")
	}
	if _, ok := seen["EF.DG2"]; ok {
		t.Fatalf("EF.DG2 must not be attempted: its tag 0x75 is absent from EF.COM's tag list")
	}
	if _, ok := seen["EF.DG5"]; ok {
		t.Fatalf("EF.DG5 must not be attempted: its tag 0x65 is absent from EF.COM's tag list")
	}

	com := seen["EF.COM"]
	if com == nil {
		t.Fatalf("expected EF.COM itself to be read")
	}
}
