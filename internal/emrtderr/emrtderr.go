// Package emrtderr holds the sentinel errors this module's callers check
// with errors.Is, distinguishing expected failure modes (no card, wrong
// keys, a chip that only partially supports Secure Messaging) from
// unexpected ones.
package emrtderr

import "errors"

var (
	// ErrCardNotPresent means no PC/SC reader had a card inserted.
	ErrCardNotPresent = errors.New("emrtd: no card present")

	// ErrAuthFailed means Basic Access Control's EXTERNAL AUTHENTICATE step
	// was rejected or its response failed verification — usually wrong MRZ
	// input (document number, date of birth, or date of expiry).
	ErrAuthFailed = errors.New("emrtd: basic access control authentication failed")

	// ErrSecureMessagingFailed means a Secure Messaging response failed MAC
	// verification after a successful BAC handshake — a corrupted
	// transmission or a desynchronized Send Sequence Counter.
	ErrSecureMessagingFailed = errors.New("emrtd: secure messaging verification failed")

	// ErrNotImplemented marks an optional code path this reader recognizes
	// but intentionally does not implement (e.g. ISO/IEC 39794 biometrics).
	ErrNotImplemented = errors.New("emrtd: not implemented")
)
