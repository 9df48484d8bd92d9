// Package bac implements the ICAO 9303 Part 11 Basic Access Control
// handshake: GET CHALLENGE, key derivation from the MRZ, EXTERNAL
// AUTHENTICATE, and the resulting Secure Messaging session keys.
//
// Grounded on the worked example in ICAO 9303 Part 11 Appendix D.4 (see
// internal/cryptoprim's TestBACKeyDerivation) and the
// GlobalPlatform SCP02 session-establishment shape of
// card/globalplatform_scp02.go (challenge/response, XOR-combined seeds,
// derived session keys, SSC seeded from the exchanged randoms) — the
// teacher's secure-channel bring-up pattern, generalized from SCP02's AES
// domain to BAC's 3DES domain.
package bac

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"emrtd-reader/internal/apdu"
	"emrtd-reader/internal/cryptoprim"
	"emrtd-reader/internal/emrtderr"
	"emrtd-reader/mrz"
)

// MRZKey is the three MRZ fields BAC derives its seed key from: document
// number, date of birth and date of expiry, without check digits. KMRZ
// computes each field's check digit and appends it (ICAO 9303 Part 11, 4.1).
type MRZKey struct {
	DocumentNumber string
	DateOfBirth    string // YYMMDD
	DateOfExpiry   string // YYMMDD
}

// KMRZ renders the concatenated, check-digit-appended, '<'-padded K_MRZ
// input string BAC's seed derivation hashes.
func (k MRZKey) KMRZ() string {
	docField := padRight(k.DocumentNumber, 9)
	docCD := mrz.CheckDigit(docField)
	dobCD := mrz.CheckDigit(k.DateOfBirth)
	doeCD := mrz.CheckDigit(k.DateOfExpiry)
	return fmt.Sprintf("%s%c%s%c%s%c", docField, docCD, k.DateOfBirth, dobCD, k.DateOfExpiry, doeCD)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + bytesRepeat('<', n-len(s))
}

func bytesRepeat(b byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return string(out)
}

// Run performs the BAC handshake over t and returns the established Secure
// Messaging channel, per spec §4.5:
//
//  1. GET CHALLENGE to obtain RND.IC (8 bytes).
//  2. Generate RND.IFD (8 bytes) and K.IFD (16 bytes) locally.
//  3. Derive K.enc/K.mac from K_seed = SHA1(K_MRZ)[:16].
//  4. Build S = RND.IFD || RND.IC || K.IFD, encrypt it and MAC it, and send
//     it via EXTERNAL AUTHENTICATE.
//  5. Decrypt and verify the card's response, recovering K.IC.
//  6. Derive the session seed K_seed' = K.IFD XOR K.IC and the session
//     keys KS.enc/KS.mac, and seed the initial SSC from the low 4 bytes of
//     RND.IC followed by the low 4 bytes of RND.IFD.
func Run(t apdu.Transport, key MRZKey) (*apdu.SecureChannel, error) {
	challengeResp, err := apdu.Exchange(t, apdu.Command{INS: apdu.InsGetChallenge, Le: 8})
	if err != nil {
		return nil, fmt.Errorf("bac: GET CHALLENGE: %w", err)
	}
	if !challengeResp.IsOK() {
		return nil, fmt.Errorf("%w: GET CHALLENGE returned %s", emrtderr.ErrAuthFailed, apdu.SWToString(challengeResp.SW()))
	}
	rndIC := challengeResp.Data
	if len(rndIC) != 8 {
		return nil, fmt.Errorf("bac: GET CHALLENGE returned %d bytes, want 8", len(rndIC))
	}

	rndIFD := make([]byte, 8)
	if _, err := rand.Read(rndIFD); err != nil {
		return nil, fmt.Errorf("bac: generating RND.IFD: %w", err)
	}
	kIFD := make([]byte, 16)
	if _, err := rand.Read(kIFD); err != nil {
		return nil, fmt.Errorf("bac: generating K.IFD: %w", err)
	}

	seed := cryptoprim.SHA1([]byte(key.KMRZ()))[:16]
	kEnc := cryptoprim.KDF(seed, 1)
	kMac := cryptoprim.KDF(seed, 2)

	s := append(append(append([]byte{}, rndIFD...), rndIC...), kIFD...)
	eIFD, err := cryptoprim.TripleDESCBCEncrypt(kEnc, s)
	if err != nil {
		return nil, fmt.Errorf("bac: encrypting authentication data: %w", err)
	}
	mIFD, err := cryptoprim.RetailMAC(kMac, make([]byte, 8), eIFD)
	if err != nil {
		return nil, fmt.Errorf("bac: computing authentication MAC: %w", err)
	}

	authResp, err := apdu.Exchange(t, apdu.Command{
		INS:  apdu.InsExternalAuthenticate,
		Data: append(append([]byte{}, eIFD...), mIFD...),
		Le:   256,
	})
	if err != nil {
		return nil, fmt.Errorf("bac: EXTERNAL AUTHENTICATE: %w", err)
	}
	if !authResp.IsOK() {
		return nil, fmt.Errorf("%w: EXTERNAL AUTHENTICATE returned %s", emrtderr.ErrAuthFailed, apdu.SWToString(authResp.SW()))
	}
	if len(authResp.Data) != 40 {
		return nil, fmt.Errorf("%w: EXTERNAL AUTHENTICATE response has %d bytes, want 40", emrtderr.ErrAuthFailed, len(authResp.Data))
	}

	eIC := authResp.Data[0:32]
	mIC := authResp.Data[32:40]
	expectedMAC, err := cryptoprim.RetailMAC(kMac, make([]byte, 8), eIC)
	if err != nil {
		return nil, fmt.Errorf("bac: computing expected response MAC: %w", err)
	}
	if !bytes.Equal(expectedMAC, mIC) {
		return nil, fmt.Errorf("%w: response MAC mismatch", emrtderr.ErrAuthFailed)
	}

	response, err := cryptoprim.TripleDESCBCDecrypt(kEnc, eIC)
	if err != nil {
		return nil, fmt.Errorf("bac: decrypting response: %w", err)
	}
	respRndIC := response[0:8]
	respRndIFD := response[8:16]
	kIC := response[16:32]

	if !bytes.Equal(respRndIC, rndIC) {
		return nil, fmt.Errorf("%w: card echoed the wrong RND.IC", emrtderr.ErrAuthFailed)
	}
	if !bytes.Equal(respRndIFD, rndIFD) {
		return nil, fmt.Errorf("%w: card echoed the wrong RND.IFD", emrtderr.ErrAuthFailed)
	}

	sessionSeed := xorBytes(kIFD, kIC)
	ksEnc := cryptoprim.KDF(sessionSeed, 1)
	ksMac := cryptoprim.KDF(sessionSeed, 2)

	var ssc [8]byte
	copy(ssc[0:4], rndIC[4:8])
	copy(ssc[4:8], rndIFD[4:8])

	return &apdu.SecureChannel{
		KSEnc: ksEnc,
		KSMac: ksMac,
		SSC:   binary.BigEndian.Uint64(ssc[:]),
	}, nil
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
