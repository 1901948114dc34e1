package recode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/netmigrate/internal/ir"
)

// NormalizeTIPID zero-pads a project identifier to 8 characters and
// formats it as XX-XX-XXXX.
func NormalizeTIPID(raw string) (string, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] > unicode.MaxASCII {
			return "", fmt.Errorf("normalize %q: %w", raw, ErrTIPIDNotASCII)
		}
	}
	n := len(raw)
	if n > 8 {
		return "", fmt.Errorf("normalize %q: %w", raw, ErrTIPIDTooLong)
	}
	padded := strings.Repeat("0", 8-n) + raw
	return padded[:2] + "-" + padded[2:4] + "-" + padded[4:], nil
}

// Numeric reads a numeric attribute. Legacy exports store numbers as
// integers, doubles or text, so text is parsed after trimming spaces. The
// boolean is false for null or blank values. Anything else that is not a
// number is ErrNotNumeric.
func Numeric(v ir.Value) (float64, bool, error) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true, nil
	case ir.Float:
		return float64(n), true, nil
	case ir.String:
		text := strings.TrimSpace(string(n))
		if text == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%q: %w", text, ErrNotNumeric)
		}
		return f, true, nil
	}
	if ir.IsNull(v) {
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("%T value: %w", v, ErrNotNumeric)
}

// FormatToll renders a toll amount with at most 6 fraction digits and no
// trailing zeros or point. Zero renders as "0".
func FormatToll(toll float64) string {
	if toll == 0 {
		return "0"
	}
	s := strconv.FormatFloat(toll, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FuseMode combines a legacy mode with its truck restriction code into a
// three-character mode. The boolean is false when the mode is not
// recognized, leaving the field at its default.
func FuseMode(mode Mode, truckres string) (string, bool, error) {
	switch mode.Kind {
	case ModeAll, ModeTruckOnly, ModeBusOnly, ModeHOV:
		return mode.Raw() + "00", true, nil
	case ModeAutoOnly:
		if truckres == "" {
			return "", false, errNoTruckRestriction
		}
		return fuseTruckRestriction(truckres), true, nil
	default:
		return "", false, nil
	}
}

// fuseTruckRestriction builds a restricted mode: a single digit d gives
// "20d", any other code c gives "2c".
func fuseTruckRestriction(code string) string {
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		return "20" + code
	}
	return "2" + code
}

// CodingMode recodes the mode of a passed-through project coding record.
// "0" means unchanged and stays "0".
func CodingMode(raw string) string {
	if raw == "0" {
		return "0"
	}
	return raw + "00"
}

// CLTL normalizes the center-left-turn-lane flag. The boolean is false
// when the legacy value leaves the field at its default.
func CLTL(legacy int64) (int64, bool) {
	switch legacy {
	case 0, 1:
		return legacy, true
	case 2:
		return 1, true
	default:
		return 0, false
	}
}

// ParkingRestriction passes through the recognized restriction codes.
func ParkingRestriction(raw string) (string, bool) {
	p := ParseParkRestriction(raw)
	if p.Kind == ParkUnrecognized {
		return "", false
	}
	return p.Raw(), true
}

// SRA passes through Strategic Regional Arterial codes of 3 or more
// characters. Shorter codes mean not applicable.
func SRA(raw string) (string, bool) {
	if utf8.RuneCountInString(raw) >= 3 {
		return raw, true
	}
	return "", false
}
