// Package card provides the PC/SC smart-card reader transport: the only
// external collaborator this module relies on. It is adapted from the
// teacher's reader wrapper, trimmed to the operations the eMRTD orchestrator
// needs (connect, transmit, drop the field, close).
package card

import (
	"fmt"
	"strings"

	"github.com/ebfe/scard"
)

// Reader is a connected PC/SC reader holding an inserted card.
type Reader struct {
	ctx  *scard.Context
	card *scard.Card
	name string
	atr  []byte
}

// ListReaders enumerates PC/SC reader names known to the system.
func ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("card: establishing PC/SC context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("card: listing readers: %w", err)
	}
	return readers, nil
}

// Connect opens a shared connection to readerName.
func Connect(readerName string) (*Reader, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("card: establishing PC/SC context: %w", err)
	}

	c, err := ctx.Connect(readerName, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("card: connecting to '%s': %w", readerName, err)
	}

	status, err := c.Status()
	if err != nil {
		c.Disconnect(scard.LeaveCard)
		ctx.Release()
		return nil, fmt.Errorf("card: reading status of '%s': %w", readerName, err)
	}

	return &Reader{ctx: ctx, card: c, name: readerName, atr: status.Atr}, nil
}

// ConnectMatching connects to the first reader whose name contains substr
// (case-insensitive), or the first reader overall when substr is empty —
// the autodetect fallback for the CLI's --reader flag.
func ConnectMatching(substr string) (*Reader, error) {
	readers, err := ListReaders()
	if err != nil {
		return nil, err
	}
	if len(readers) == 0 {
		return nil, fmt.Errorf("card: no PC/SC readers found")
	}
	if substr == "" {
		return Connect(readers[0])
	}
	needle := strings.ToLower(substr)
	for _, name := range readers {
		if strings.Contains(strings.ToLower(name), needle) {
			return Connect(name)
		}
	}
	return nil, fmt.Errorf("card: no reader matching %q (available: %s)", substr, strings.Join(readers, ", "))
}

// Transmit sends a raw APDU and returns the raw response bytes (data plus
// trailing SW1/SW2), implementing apdu.Transport.
func (r *Reader) Transmit(apduBytes []byte) ([]byte, error) {
	resp, err := r.card.Transmit(apduBytes)
	if err != nil {
		return nil, fmt.Errorf("card: transmit failed: %w", err)
	}
	return resp, nil
}

// DropField disconnects leaving the card powered down without releasing the
// PC/SC context — the "drop_field" step of a scoped acquisition.
func (r *Reader) DropField() error {
	if r.card == nil {
		return nil
	}
	return r.card.Disconnect(scard.UnpowerCard)
}

// Close releases the card and PC/SC context. Idempotent.
func (r *Reader) Close() error {
	if r.card != nil {
		r.card.Disconnect(scard.LeaveCard)
		r.card = nil
	}
	if r.ctx != nil {
		r.ctx.Release()
		r.ctx = nil
	}
	return nil
}

// Name returns the underlying PC/SC reader name.
func (r *Reader) Name() string { return r.name }

// ATRHex renders the card's Answer-To-Reset as an uppercase hex string.
func (r *Reader) ATRHex() string { return fmt.Sprintf("%X", r.atr) }
