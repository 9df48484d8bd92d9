package dgparse

import "fmt"

// ParsedDataGroup is a tagged union over the data groups this reader
// understands: at most one field is non-nil, matching the short name of
// the catalog entry it was parsed from (none when IsEmpty reports true). Grounded on the source's
// ParsedDataGroup enum (original_source/src/types.rs), expressed in Go as a
// struct of optional pointers rather than a sum type.
type ParsedDataGroup struct {
	EFCom *EFCom
	DG1   *EFDG1
	DG2   *EFDG2
	DG5   *EFDG5
	DG7   *EFDG7
	DG11  *EFDG11
	DG12  *EFDG12
}

// Parse dispatches raw on the catalog short name to the matching decoder,
// wrapping the result in a ParsedDataGroup. Names without a known parser
// (binary-only entries such as EF.DG14) return a zero ParsedDataGroup and a
// nil error — the orchestrator still has the raw bytes to dump.
func Parse(shortName string, raw []byte) (ParsedDataGroup, error) {
	switch shortName {
	case "EF.COM":
		v, err := ParseEFCom(raw)
		return ParsedDataGroup{EFCom: v}, err
	case "EF.DG1":
		v, err := ParseEFDG1(raw)
		return ParsedDataGroup{DG1: v}, err
	case "EF.DG2":
		v, err := ParseEFDG2(raw)
		return ParsedDataGroup{DG2: v}, err
	case "EF.DG5":
		v, err := ParseEFDG5(raw)
		return ParsedDataGroup{DG5: v}, err
	case "EF.DG7":
		v, err := ParseEFDG7(raw)
		return ParsedDataGroup{DG7: v}, err
	case "EF.DG11":
		v, err := ParseEFDG11(raw)
		return ParsedDataGroup{DG11: v}, err
	case "EF.DG12":
		v, err := ParseEFDG12(raw)
		return ParsedDataGroup{DG12: v}, err
	default:
		return ParsedDataGroup{}, nil
	}
}

// IsEmpty reports whether no variant was populated — either there was no
// parser for this file, or the parser detected an outer-tag mismatch and
// skipped decoding.
func (p ParsedDataGroup) IsEmpty() bool {
	return p.EFCom == nil && p.DG1 == nil && p.DG2 == nil && p.DG5 == nil &&
		p.DG7 == nil && p.DG11 == nil && p.DG12 == nil
}

func (p ParsedDataGroup) String() string {
	switch {
	case p.EFCom != nil:
		return fmt.Sprintf("EF.COM{LDS=%s, Unicode=%s, tags=%x}", p.EFCom.LDSVersion, p.EFCom.UnicodeVersion, p.EFCom.DataGroupTags)
	case p.DG1 != nil:
		return "EF.DG1{MRZ}"
	case p.DG2 != nil:
		return fmt.Sprintf("EF.DG2{%d biometric(s)}", len(p.DG2.Biometrics))
	case p.DG5 != nil:
		return fmt.Sprintf("EF.DG5{%d portrait(s)}", len(p.DG5.DisplayedPortraits))
	case p.DG7 != nil:
		return fmt.Sprintf("EF.DG7{%d signature(s)}", len(p.DG7.DisplayedSignatures))
	case p.DG11 != nil:
		return fmt.Sprintf("EF.DG11{%s}", p.DG11.FullName)
	case p.DG12 != nil:
		return "EF.DG12{additional document details}"
	default:
		return "ParsedDataGroup{empty}"
	}
}
