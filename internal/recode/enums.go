package recode

// ModeKind classifies a legacy link mode code.
type ModeKind int

const (
	ModeUnrecognized ModeKind = iota
	ModeAll                   // "1"
	ModeAutoOnly              // "2", truck restricted
	ModeTruckOnly             // "3"
	ModeBusOnly               // "4"
	ModeHOV                   // "5"
)

// Mode is a parsed legacy mode code.
type Mode struct {
	Kind ModeKind
	raw  string
}

// ParseMode classifies a legacy mode code. Unknown codes keep their text.
func ParseMode(raw string) Mode {
	return Mode{Kind: modeKinds[raw], raw: raw}
}

var modeKinds = map[string]ModeKind{
	"1": ModeAll,
	"2": ModeAutoOnly,
	"3": ModeTruckOnly,
	"4": ModeBusOnly,
	"5": ModeHOV,
}

// Raw returns the legacy code text.
func (m Mode) Raw() string { return m.raw }

func (m Mode) String() string { return m.raw }

// ActionKind classifies a project coding action code.
type ActionKind int

const (
	ActionOther   ActionKind = iota // passed through unchanged
	ActionReplace                   // "2"
	ActionModify                    // "4"
)

const (
	actionReplaceCode = "2"
	actionModifyCode  = "4"
)

// ActionCode is a parsed project coding action code.
type ActionCode struct {
	Kind ActionKind
	raw  string
}

// ParseActionCode classifies an action code. Codes other than replace and
// modify keep their text and pass through.
func ParseActionCode(raw string) ActionCode {
	switch raw {
	case actionReplaceCode:
		return ActionCode{Kind: ActionReplace, raw: raw}
	case actionModifyCode:
		return ActionCode{Kind: ActionModify, raw: raw}
	default:
		return ActionCode{Kind: ActionOther, raw: raw}
	}
}

// ModifyAction is the action code given to synthetic replacement records.
var ModifyAction = ActionCode{Kind: ActionModify, raw: actionModifyCode}

// ReplaceActionCode is the raw code of replace actions, for store predicates.
const ReplaceActionCode = actionReplaceCode

// Raw returns the legacy code text.
func (a ActionCode) Raw() string { return a.raw }

func (a ActionCode) String() string { return a.raw }

// ParkRestrictionKind classifies a legacy parking restriction code.
type ParkRestrictionKind int

const (
	ParkUnrecognized ParkRestrictionKind = iota
	ParkAMPeak                           // "3"
	ParkPMPeak                           // "7"
	ParkBothPeaks                        // "37"
)

// ParkRestriction is a parsed legacy parking restriction code.
type ParkRestriction struct {
	Kind ParkRestrictionKind
	raw  string
}

// ParseParkRestriction classifies a parking restriction code.
func ParseParkRestriction(raw string) ParkRestriction {
	switch raw {
	case "3":
		return ParkRestriction{Kind: ParkAMPeak, raw: raw}
	case "7":
		return ParkRestriction{Kind: ParkPMPeak, raw: raw}
	case "37":
		return ParkRestriction{Kind: ParkBothPeaks, raw: raw}
	default:
		return ParkRestriction{Kind: ParkUnrecognized, raw: raw}
	}
}

// Raw returns the legacy code text.
func (p ParkRestriction) Raw() string { return p.raw }
