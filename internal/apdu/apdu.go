// Package apdu implements the ISO/IEC 7816-4 command/response APDU codec
// used throughout this reader, including the BAC Secure Messaging wrap and
// unwrap transformation. The unsecured codec (Command/Response, SW table,
// 6C/61 retry handling) is adapted from the teacher's card/apdu.go; the
// Secure Messaging layer is new, built on internal/cryptoprim.
package apdu

import (
	"encoding/binary"
	"fmt"

	"emrtd-reader/internal/bertlv"
	"emrtd-reader/internal/cryptoprim"
	"emrtd-reader/internal/emrtderr"
)

// Status words used by this reader. Not exhaustive of ISO 7816-4 — only the
// codes the orchestrator and file reader branch on.
const (
	SWOK                  uint16 = 0x9000
	SWBytesRemainingPrefix uint16 = 0x6100 // SW1=0x61, SW2=remaining length
	SWWrongLengthPrefix    uint16 = 0x6C00 // SW1=0x6C, SW2=correct Le
	SWFileNotFound         uint16 = 0x6A82
	SWSecurityNotSatisfied uint16 = 0x6982
	SWWrongP1P2            uint16 = 0x6A86
	SWInsNotSupported      uint16 = 0x6D00
	SWClaNotSupported      uint16 = 0x6E00
)

// SWToString returns a short human-readable label for a status word,
// falling back to a generic description for the 61/6C families.
func SWToString(sw uint16) string {
	switch sw {
	case SWOK:
		return "OK"
	case SWFileNotFound:
		return "file not found"
	case SWSecurityNotSatisfied:
		return "security status not satisfied"
	case SWWrongP1P2:
		return "incorrect P1/P2"
	case SWInsNotSupported:
		return "instruction not supported"
	case SWClaNotSupported:
		return "class not supported"
	}
	sw1, sw2 := byte(sw>>8), byte(sw)
	if sw1 == 0x61 {
		return fmt.Sprintf("%d bytes remaining", sw2)
	}
	if sw1 == 0x6C {
		return fmt.Sprintf("wrong length, retry with Le=%d", sw2)
	}
	return fmt.Sprintf("SW=%04X", sw)
}

// Instruction bytes this reader issues.
const (
	InsSelect               = 0xA4
	InsReadBinary            = 0xB0
	InsGetResponse           = 0xC0
	InsGetChallenge          = 0x84
	InsExternalAuthenticate  = 0x82
)

// Command is one command APDU.
type Command struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte
	Le   int // 0 means "no data expected"; 256 is encoded per the short-form convention (§11)
}

// fieldLenBytes encodes an Lc/Le field per ISO/IEC 7816-4: absent when 0,
// one byte for 1..255, and — for Le only — the short-form convention where
// 256 is encoded as a single 0x00 byte. This implementation standardizes on
// the short form at the 256 boundary throughout (see SPEC_FULL.md §11),
// matching the teacher's card/apdu.go rather than an extended three-byte
// encoding.
func fieldLenBytes(n int, isLe bool) []byte {
	switch {
	case n == 0:
		return nil
	case n == 256 && isLe:
		return []byte{0x00}
	case n >= 1 && n <= 255:
		return []byte{byte(n)}
	default:
		hi := byte(n >> 8)
		lo := byte(n)
		return []byte{0x00, hi, lo}
	}
}

// Encode serializes the command APDU.
func (c Command) Encode() []byte {
	lc := fieldLenBytes(len(c.Data), false)
	le := fieldLenBytes(c.Le, true)

	out := make([]byte, 0, 4+len(lc)+len(c.Data)+len(le))
	out = append(out, c.CLA, c.INS, c.P1, c.P2)
	out = append(out, lc...)
	out = append(out, c.Data...)
	out = append(out, le...)
	return out
}

// Response is one response APDU, split into data and status word.
type Response struct {
	Data []byte
	SW1  byte
	SW2  byte
}

// SW returns the status word as a single 16-bit value.
func (r *Response) SW() uint16 { return uint16(r.SW1)<<8 | uint16(r.SW2) }

// IsOK reports whether the response status word is 0x9000.
func (r *Response) IsOK() bool { return r.SW() == SWOK }

// HasMoreData reports SW1=0x61 (more data available via GET RESPONSE).
func (r *Response) HasMoreData() bool { return r.SW1 == 0x61 }

// NeedsRetry reports SW1=0x6C (wrong Le; retry with SW2 as the correct Le).
func (r *Response) NeedsRetry() bool { return r.SW1 == 0x6C }

// Err returns a non-nil error if the response is neither OK nor "more data".
func (r *Response) Err() error {
	if r.IsOK() || r.HasMoreData() {
		return nil
	}
	return fmt.Errorf("apdu: %s", SWToString(r.SW()))
}

// parseResponse splits raw transport bytes into data and trailing SW1/SW2.
func parseResponse(raw []byte) (*Response, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("apdu: response too short (%d bytes)", len(raw))
	}
	return &Response{
		Data: raw[:len(raw)-2],
		SW1:  raw[len(raw)-2],
		SW2:  raw[len(raw)-1],
	}, nil
}

// Transport is the minimal capability the codec needs from a reader
// connection: send raw bytes, get raw bytes back.
type Transport interface {
	Transmit(apdu []byte) ([]byte, error)
}

// Exchange sends cmd over t and parses the response, automatically handling
// SW1=0x6C by reissuing with the corrected Le.
func Exchange(t Transport, cmd Command) (*Response, error) {
	raw, err := t.Transmit(cmd.Encode())
	if err != nil {
		return nil, err
	}
	resp, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.NeedsRetry() {
		cmd.Le = int(resp.SW2)
		raw, err = t.Transmit(cmd.Encode())
		if err != nil {
			return nil, err
		}
		resp, err = parseResponse(raw)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GetResponse issues GET RESPONSE (INS 0xC0) with Le=wantLen.
func GetResponse(t Transport, wantLen byte) (*Response, error) {
	return Exchange(t, Command{CLA: 0x00, INS: InsGetResponse, Le: int(wantLen)})
}

// --- Secure Messaging (BAC) ---

// SecureChannel holds the Secure Messaging session state established after
// a successful BAC EXTERNAL AUTHENTICATE: the session keys and the
// monotonic Send Sequence Counter.
type SecureChannel struct {
	KSEnc []byte // 16-byte 3DES session encryption key
	KSMac []byte // 16-byte 3DES session MAC key
	SSC   uint64
}

// tlvTag87 and friends are the BER-TLV tags used by Secure Messaging data
// objects, per ICAO 9303 Part 11 / ISO 7816-4.
const (
	tagDO87 uint16 = 0x87
	tagDO97 uint16 = 0x97
	tagDO8E uint16 = 0x8E
	tagDO99 uint16 = 0x99
)

// ssc8 renders the current SSC as an 8-byte big-endian value.
func (sc *SecureChannel) ssc8() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sc.SSC)
	return b[:]
}

// Wrap applies the BAC Secure Messaging transformation to cmd and returns
// the outer protected APDU, per spec §4.3. It increments SSC before
// building the command (step 1 of the wrap algorithm).
func (sc *SecureChannel) Wrap(cmd Command) (Command, error) {
	if cmd.INS%2 != 0 {
		return Command{}, fmt.Errorf("apdu: secure messaging over an odd INS (0x%02X) is not implemented", cmd.INS)
	}

	sc.SSC++

	maskedCLA := cmd.CLA | 0x0C

	var secureData []byte
	if len(cmd.Data) > 0 {
		enc, err := cryptoprim.TripleDESCBCEncrypt(sc.KSEnc, cryptoprim.PadMethod2(cmd.Data))
		if err != nil {
			return Command{}, fmt.Errorf("apdu: encrypting command data: %w", err)
		}
		do87 := append([]byte{0x01}, enc...)
		secureData = append(secureData, encodeTLV(tagDO87, do87)...)
	}
	if cmd.Le != 0 {
		secureData = append(secureData, encodeTLV(tagDO97, leBytes(cmd.Le))...)
	}

	header := []byte{maskedCLA, cmd.INS, cmd.P1, cmd.P2}
	macInput := append(append(sc.ssc8(), cryptoprim.PadMethod2(header)...), secureData...)
	mac, err := cryptoprim.RetailMAC(sc.KSMac, make([]byte, 8), macInput)
	if err != nil {
		return Command{}, fmt.Errorf("apdu: computing command MAC: %w", err)
	}
	secureData = append(secureData, encodeTLV(tagDO8E, mac)...)

	return Command{
		CLA:  maskedCLA,
		INS:  cmd.INS,
		P1:   cmd.P1,
		P2:   cmd.P2,
		Data: secureData,
		Le:   256,
	}, nil
}

// leBytes renders an Le value the way it is placed inside DO'97': a single
// byte for 1..255, or the 256-as-0x00 short-form convention.
func leBytes(le int) []byte {
	if le == 256 {
		return []byte{0x00}
	}
	return []byte{byte(le)}
}

// Unwrap verifies and decrypts a secured response per spec §4.3, returning
// the inner (unsecured) response data with the original status word
// reattached. It increments SSC before verifying (step 3 of the unwrap
// algorithm).
func (sc *SecureChannel) Unwrap(resp *Response) (*Response, error) {
	sc.SSC++

	tlvs, err := parseConcatenatedTLVs(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("apdu: parsing secured response: %w", err)
	}
	byTag := bertlv.TagMap(tlvs)

	do8e, ok := byTag[tagDO8E]
	if !ok {
		return nil, fmt.Errorf("apdu: secured response missing MAC (DO'8E')")
	}

	var macInputParts []byte
	if do87, ok := byTag[tagDO87]; ok {
		macInputParts = append(macInputParts, encodeTLV(tagDO87, do87.Value)...)
	}
	if do99, ok := byTag[tagDO99]; ok {
		macInputParts = append(macInputParts, encodeTLV(tagDO99, do99.Value)...)
	}
	macInput := append(sc.ssc8(), macInputParts...)
	expectedMAC, err := cryptoprim.RetailMAC(sc.KSMac, make([]byte, 8), macInput)
	if err != nil {
		return nil, fmt.Errorf("apdu: computing expected response MAC: %w", err)
	}
	if !constantTimeEqual(expectedMAC, do8e.Value) {
		return nil, fmt.Errorf("apdu: %w: MAC mismatch on response", emrtderr.ErrSecureMessagingFailed)
	}

	var inner []byte
	if do87, ok := byTag[tagDO87]; ok {
		if len(do87.Value) < 1 || do87.Value[0] != 0x01 {
			return nil, fmt.Errorf("apdu: DO'87' missing padding-indicator byte")
		}
		plain, err := cryptoprim.TripleDESCBCDecrypt(sc.KSEnc, do87.Value[1:])
		if err != nil {
			return nil, fmt.Errorf("apdu: decrypting response data: %w", err)
		}
		inner, err = cryptoprim.UnpadMethod2(plain)
		if err != nil {
			return nil, fmt.Errorf("apdu: unpadding response data: %w", err)
		}
	}

	return &Response{Data: inner, SW1: resp.SW1, SW2: resp.SW2}, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// encodeTLV renders tag/value as BER-TLV bytes. Tags used by Secure
// Messaging (0x87, 0x97, 0x8E, 0x99) are all single-byte, so this helper
// does not need the full two-byte tag generality of package bertlv.
func encodeTLV(tag uint16, value []byte) []byte {
	out := []byte{byte(tag)}
	out = append(out, berLength(len(value))...)
	out = append(out, value...)
	return out
}

func berLength(n int) []byte {
	if n <= 0x7F {
		return []byte{byte(n)}
	}
	if n <= 0xFF {
		return []byte{0x81, byte(n)}
	}
	return []byte{0x82, byte(n >> 8), byte(n)}
}

func parseConcatenatedTLVs(data []byte) ([]*bertlv.TLV, error) {
	var out []*bertlv.TLV
	rest := data
	for len(rest) > 0 {
		tlv, tail, err := bertlv.Parse(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, tlv)
		rest = tail
	}
	return out, nil
}

// WrapAndExchange wraps cmd under sc, sends it over t, and unwraps the
// response, chaining SW1=0x6C retries the same way the unsecured Exchange
// does.
func WrapAndExchange(t Transport, sc *SecureChannel, cmd Command) (*Response, error) {
	wrapped, err := sc.Wrap(cmd)
	if err != nil {
		return nil, err
	}
	resp, err := Exchange(t, wrapped)
	if err != nil {
		return nil, err
	}
	if !resp.IsOK() && !resp.HasMoreData() {
		return nil, resp.Err()
	}
	return sc.Unwrap(resp)
}
