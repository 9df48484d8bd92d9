// Package filereader implements the SELECT+READ BINARY file-reading
// algorithm shared by both orchestrator phases: select an EF by short id,
// probe its length from the first TLV header bytes, then read the rest in
// bounded chunks. Grounded on spec §4.4; the SELECT/READ BINARY framing
// itself reuses internal/apdu exactly as the teacher's card package issues
// its own SELECT/READ BINARY sequences.
package filereader

import (
	"fmt"

	"emrtd-reader/internal/apdu"
)

// maxChunk is the largest READ BINARY request this reader issues per round
// trip (spec §4.4 step 3).
const maxChunk = 0x80

// exchanger abstracts over a plain apdu.Transport and a BAC Secure
// Messaging channel, so SelectAndRead can drive either without duplicating
// the read loop.
type exchanger interface {
	exchange(cmd apdu.Command) (*apdu.Response, error)
}

type plainExchanger struct{ t apdu.Transport }

func (p plainExchanger) exchange(cmd apdu.Command) (*apdu.Response, error) {
	return apdu.Exchange(p.t, cmd)
}

type secureExchanger struct {
	t  apdu.Transport
	sc *apdu.SecureChannel
}

func (s secureExchanger) exchange(cmd apdu.Command) (*apdu.Response, error) {
	return apdu.WrapAndExchange(s.t, s.sc, cmd)
}

// SelectAndRead selects the EF identified by fileID and reads its full
// contents in the clear. On a non-OK SELECT response it returns (nil, false,
// nil) — "not present" is the normal case for most optional files.
func SelectAndRead(t apdu.Transport, fileID uint16) ([]byte, bool, error) {
	return selectAndRead(plainExchanger{t}, fileID)
}

// SecureSelectAndRead selects and reads fileID with every command/response
// wrapped under Secure Messaging (Phase B, spec §4.6).
func SecureSelectAndRead(t apdu.Transport, sc *apdu.SecureChannel, fileID uint16) ([]byte, bool, error) {
	return selectAndRead(secureExchanger{t: t, sc: sc}, fileID)
}

func selectAndRead(ex exchanger, fileID uint16) ([]byte, bool, error) {
	selectData := []byte{byte(fileID >> 8), byte(fileID)}
	selResp, err := ex.exchange(apdu.Command{CLA: 0x00, INS: apdu.InsSelect, P1: 0x02, P2: 0x0C, Data: selectData})
	if err != nil {
		return nil, false, fmt.Errorf("filereader: SELECT FILE %04X: %w", fileID, err)
	}
	if !selResp.IsOK() {
		return nil, false, nil
	}

	probe, err := ex.exchange(apdu.Command{CLA: 0x00, INS: apdu.InsReadBinary, Le: 5})
	if err != nil {
		return nil, false, fmt.Errorf("filereader: probe read of %04X: %w", fileID, err)
	}
	if !probe.IsOK() {
		return nil, false, fmt.Errorf("filereader: probe read of %04X: %s", fileID, apdu.SWToString(probe.SW()))
	}
	if len(probe.Data) < 2 {
		return nil, false, fmt.Errorf("filereader: probe read of %04X returned only %d bytes", fileID, len(probe.Data))
	}

	lenFieldBytes, valueLen, err := parseOuterLength(probe.Data)
	if err != nil {
		return nil, false, fmt.Errorf("filereader: %04X: %w", fileID, err)
	}
	// fileLen widens the source's 16-bit accumulator to 32 bits (SPEC_FULL.md
	// §4.4 deviation note) so the computed length of a file larger than
	// 65,535 bytes does not wrap. Each READ BINARY still carries its offset
	// in P1/P2, which holds only the low 16 bits of offset.
	fileLen := uint32(1) + uint32(lenFieldBytes) + valueLen

	buf := append([]byte{}, probe.Data...)
	offset := uint32(len(buf))
	for offset < fileLen {
		want := fileLen - offset
		if want > maxChunk {
			want = maxChunk
		}
		resp, err := ex.exchange(apdu.Command{CLA: 0x00, INS: apdu.InsReadBinary, P1: byte(offset >> 8), P2: byte(offset), Le: int(want)})
		if err != nil {
			return nil, false, fmt.Errorf("filereader: reading %04X at offset %d: %w", fileID, offset, err)
		}
		if !resp.IsOK() && !resp.HasMoreData() {
			return nil, false, fmt.Errorf("filereader: reading %04X at offset %d: %s", fileID, offset, apdu.SWToString(resp.SW()))
		}
		if len(resp.Data) == 0 {
			break
		}
		buf = append(buf, resp.Data...)
		offset += uint32(len(resp.Data))
	}

	if len(buf) == 0 {
		return nil, true, nil
	}
	return buf, true, nil
}

// parseOuterLength decodes the BER length field starting at probe[1],
// returning the number of bytes the length field itself occupies and the
// decoded value length. probe must hold at least the 5-byte probe read.
func parseOuterLength(probe []byte) (lenFieldBytes int, valueLen uint32, err error) {
	b0 := probe[1]
	switch {
	case b0 <= 0x7F:
		return 1, uint32(b0), nil
	case b0 == 0x81:
		if len(probe) < 3 {
			return 0, 0, fmt.Errorf("truncated 0x81 length field")
		}
		return 2, uint32(probe[2]), nil
	case b0 == 0x82:
		if len(probe) < 4 {
			return 0, 0, fmt.Errorf("truncated 0x82 length field")
		}
		return 3, uint32(probe[2])<<8 | uint32(probe[3]), nil
	case b0 == 0x83:
		if len(probe) < 5 {
			return 0, 0, fmt.Errorf("truncated 0x83 length field")
		}
		return 4, uint32(probe[2])<<16 | uint32(probe[3])<<8 | uint32(probe[4]), nil
	case b0 == 0x84:
		return 0, 0, fmt.Errorf("0x84 length field needs a 5th byte beyond the probe read, not yet supported")
	default:
		return 0, 0, fmt.Errorf("unsupported BER length prefix 0x%02X", b0)
	}
}
