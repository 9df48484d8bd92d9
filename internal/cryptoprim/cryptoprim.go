// Package cryptoprim implements the small set of cryptographic primitives
// ICAO 9303 Basic Access Control and its Secure Messaging layer need:
// SHA-1, 3DES-CBC, ISO 9797-1 Retail MAC (Algorithm 3), ISO 9797-1 Padding
// Method 2, and the Part 11 KDF. Keyed on crypto/des and crypto/sha1 rather
// than a general-purpose MAC library, because the Retail MAC ICV-chaining
// and full-block padding contract below is specific enough that a generic
// CBC-MAC implementation would need the same amount of code to adapt.
package cryptoprim

import (
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// SHA1 returns the 20-byte SHA-1 digest of data.
func SHA1(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

// expandTo3DESKey converts a 16-byte two-key 3DES key to 24-byte K1||K2||K1.
// A 24-byte input passes through unchanged.
func expandTo3DESKey(k []byte) ([]byte, error) {
	switch len(k) {
	case 16:
		out := make([]byte, 24)
		copy(out[0:16], k)
		copy(out[16:24], k[0:8])
		return out, nil
	case 24:
		return append([]byte{}, k...), nil
	default:
		return nil, fmt.Errorf("cryptoprim: 3DES key must be 16 or 24 bytes, got %d", len(k))
	}
}

// TripleDESCBCEncrypt encrypts data (which must be a multiple of 8 bytes)
// with 3DES-CBC under a zero IV. key may be 16 or 24 bytes.
func TripleDESCBCEncrypt(key, data []byte) ([]byte, error) {
	key24, err := expandTo3DESKey(key)
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("cryptoprim: data must be a multiple of 8 bytes, got %d", len(data))
	}
	block, err := des.NewTripleDESCipher(key24)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, des.BlockSize)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

// TripleDESCBCDecrypt is the inverse of TripleDESCBCEncrypt.
func TripleDESCBCDecrypt(key, data []byte) ([]byte, error) {
	key24, err := expandTo3DESKey(key)
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("cryptoprim: data must be a multiple of 8 bytes, got %d", len(data))
	}
	block, err := des.NewTripleDESCipher(key24)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, des.BlockSize)
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

// PadMethod2 implements ISO 9797-1 Padding Method 2: append 0x80, then 0x00
// bytes up to the next 8-byte multiple. At least one byte (0x80) is always
// appended, even when the input is already block-aligned — this full-block
// behavior is the detail that distinguishes it from "pad only if unaligned"
// implementations.
func PadMethod2(data []byte) []byte {
	out := make([]byte, len(data), len(data)+8)
	copy(out, data)
	out = append(out, 0x80)
	for len(out)%8 != 0 {
		out = append(out, 0x00)
	}
	return out
}

// UnpadMethod2 strips a Padding Method 2 tail: trailing 0x00 bytes, then the
// single terminating 0x80.
func UnpadMethod2(data []byte) ([]byte, error) {
	i := len(data)
	for i > 0 && data[i-1] == 0x00 {
		i--
	}
	if i == 0 || data[i-1] != 0x80 {
		return nil, fmt.Errorf("cryptoprim: malformed Padding Method 2 trailer")
	}
	return data[:i-1], nil
}

func xor8(a, b []byte) []byte {
	out := make([]byte, 8)
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func desECBEncrypt(key8, block8 []byte) ([]byte, error) {
	c, err := des.NewCipher(key8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8)
	c.Encrypt(out, block8)
	return out, nil
}

func desECBDecrypt(key8, block8 []byte) ([]byte, error) {
	c, err := des.NewCipher(key8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8)
	c.Decrypt(out, block8)
	return out, nil
}

// RetailMAC computes ISO 9797-1 MAC Algorithm 3 ("Retail MAC") with
// single-DES: key is a 16-byte (K1, K2) pair, icv is the 8-byte initial
// chaining value (zero for a fresh session), and data is the unpadded
// message — RetailMAC applies Padding Method 2 itself before MACing.
func RetailMAC(key16, icv8, data []byte) ([]byte, error) {
	if len(key16) != 16 {
		return nil, fmt.Errorf("cryptoprim: retail MAC key must be 16 bytes, got %d", len(key16))
	}
	if len(icv8) != 8 {
		return nil, fmt.Errorf("cryptoprim: ICV must be 8 bytes, got %d", len(icv8))
	}
	k1 := key16[0:8]
	k2 := key16[8:16]

	padded := PadMethod2(data)

	c, err := des.NewCipher(k1)
	if err != nil {
		return nil, err
	}
	iv := append([]byte{}, icv8...)
	block := make([]byte, 8)
	for i := 0; i < len(padded); i += 8 {
		block = xor8(padded[i:i+8], iv)
		c.Encrypt(iv, block)
	}

	// Final transform: DES-ECB decrypt with K2, then DES-ECB encrypt with K1.
	last, err := desECBDecrypt(k2, iv)
	if err != nil {
		return nil, err
	}
	last, err = desECBEncrypt(k1, last)
	if err != nil {
		return nil, err
	}
	return last, nil
}

// KDF implements the ICAO 9303 Part 11 key derivation function:
// SHA1(sharedSecret || counter_be32)[0:16]. Parity bits of the resulting DES
// key halves are left unadjusted, matching the specification.
func KDF(sharedSecret []byte, counter uint32) []byte {
	var cb [4]byte
	binary.BigEndian.PutUint32(cb[:], counter)
	input := make([]byte, 0, len(sharedSecret)+4)
	input = append(input, sharedSecret...)
	input = append(input, cb[:]...)
	digest := SHA1(input)
	return digest[:16]
}
