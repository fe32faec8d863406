package rkc

import "fmt"

// Data widths for frame payloads. Ordinary identifiers carry 7 characters
// of ASCII decimal; the model-code identifier carries 32.
const (
	DataLen      = 7
	ModelDataLen = 32
)

// Identifier names a monitored or settable controller quantity by its
// two-character code. The attribute set (data width, writability,
// memory-area scoping) is metadata for callers: the frame itself does not
// carry it, and write protection is enforced by the controller, not the
// protocol.
type Identifier struct {
	// Code is the two-character identifier, e.g. "M1".
	Code string
	// DataLen is the payload width in characters: 7, or 32 for the
	// model code.
	DataLen int
	// Writable reports whether the controller accepts a select for this
	// identifier.
	Writable bool
	// AreaScoped reports whether the identifier's data lives in a
	// memory area (parameter bank K0–K8).
	AreaScoped bool
}

// FB100/400/900 series identifiers used by this module.
var (
	// MeasuredValue is M1, the process value (PV). Read-only.
	MeasuredValue = Identifier{Code: "M1", DataLen: DataLen}

	// SetValue is S1, the temperature setpoint (SV). Read-write,
	// memory-area scoped.
	SetValue = Identifier{Code: "S1", DataLen: DataLen, Writable: true, AreaScoped: true}

	// OutputValue is O1, the manipulated output in percent. Read-only.
	OutputValue = Identifier{Code: "O1", DataLen: DataLen}

	// EventSetValue1 is A1, the first event (alarm) setpoint. Read-write,
	// memory-area scoped.
	EventSetValue1 = Identifier{Code: "A1", DataLen: DataLen, Writable: true, AreaScoped: true}

	// EventSetValue2 is A2, the second event (alarm) setpoint. Read-write,
	// memory-area scoped.
	EventSetValue2 = Identifier{Code: "A2", DataLen: DataLen, Writable: true, AreaScoped: true}

	// AlarmStatus is AA, the comprehensive event (alarm) status monitor.
	// Read-only.
	AlarmStatus = Identifier{Code: "AA", DataLen: DataLen}

	// BurnoutStatus is B1, the sensor burnout status monitor. Read-only.
	BurnoutStatus = Identifier{Code: "B1", DataLen: DataLen}

	// ErrorCode is ER, the controller error status. Read-only.
	ErrorCode = Identifier{Code: "ER", DataLen: DataLen}

	// ModelCode is ID, the 32-character controller model string. Read-only.
	ModelCode = Identifier{Code: "ID", DataLen: ModelDataLen}
)

var identifiers = map[string]Identifier{
	MeasuredValue.Code:  MeasuredValue,
	SetValue.Code:       SetValue,
	OutputValue.Code:    OutputValue,
	EventSetValue1.Code: EventSetValue1,
	EventSetValue2.Code: EventSetValue2,
	AlarmStatus.Code:    AlarmStatus,
	BurnoutStatus.Code:  BurnoutStatus,
	ErrorCode.Code:      ErrorCode,
	ModelCode.Code:      ModelCode,
}

// LookupIdentifier returns the identifier metadata for a two-character code.
func LookupIdentifier(code string) (Identifier, bool) {
	id, ok := identifiers[code]

	return id, ok
}

// validate checks the structural constraints the codec relies on.
func (id Identifier) validate() error {
	if len(id.Code) != 2 {
		return fmt.Errorf("%w: code %q must be exactly 2 characters", ErrInvalidIdentifier, id.Code)
	}
	if id.DataLen != DataLen && id.DataLen != ModelDataLen {
		return fmt.Errorf("%w: code %q has data length %d, want %d or %d",
			ErrInvalidIdentifier, id.Code, id.DataLen, DataLen, ModelDataLen)
	}

	return nil
}

// MemoryArea selects one of the controller's parameter banks. The empty
// string means no area qualifier; otherwise the value is "K0" through "K8".
type MemoryArea string

// NoArea is the absent memory-area qualifier.
const NoArea MemoryArea = ""

func (a MemoryArea) validate() error {
	if a == NoArea {
		return nil
	}
	if len(a) != 2 || a[0] != 'K' || a[1] < '0' || a[1] > '8' {
		return fmt.Errorf("%w: %q, want K0 through K8", ErrInvalidMemoryArea, string(a))
	}

	return nil
}

// Address identifies the target controller on the shared link as a
// two-digit decimal string, e.g. "01".
type Address string

func (a Address) validate() error {
	if len(a) != 2 || a[0] < '0' || a[0] > '9' || a[1] < '0' || a[1] > '9' {
		return fmt.Errorf("%w: %q, want exactly 2 decimal digits", ErrInvalidAddress, string(a))
	}

	return nil
}
