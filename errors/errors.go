// Package errors defines the sentinel errors and structured error fields
// shared by the binding layer and the host runtime. Match sentinels with
// errors.Is; structured fields appear in messages as "key: value".
package errors

import (
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes every sentinel message and structured field key.
const Namespace = "parselmouth"

var namespace = errorc.Namespace(Namespace)

// Configuration errors, detected while registering bindings.
var (
	ErrUnresolvedType     = namespace.NewError("binding resolution error: type was never declared")
	ErrDuplicateType      = namespace.NewError("type declared more than once")
	ErrInheritanceCycle   = namespace.NewError("inheritance cycle")
	ErrEmptyEnum          = namespace.NewError("enum declares no members")
	ErrDuplicateLabel     = namespace.NewError("duplicate enum label")
	ErrInvalidTransition  = namespace.NewError("invalid registration state transition")
	ErrInvalidSignature   = namespace.NewError("invalid binding signature")
	ErrRegistrationFailed = namespace.NewError("registration already failed")
)

// Runtime errors surfaced to host callers.
var (
	ErrInvalidEnumValue = namespace.NewError("invalid enum value")
	ErrEnumTypeMismatch = namespace.NewError("enum type mismatch")
	ErrNotReady         = namespace.NewError("type is declared but not initialized")
	ErrNotConstructible = namespace.NewError("type has no constructor")
	ErrReadOnlyBuffer   = namespace.NewError("buffer is read-only")
	ErrNumericalStatus  = namespace.NewError("numerical routine failed")
)

// Ownership usage errors. These are raised as panics, never returned.
var (
	ErrReleased     = namespace.NewError("object already released")
	ErrAlreadyOwned = namespace.NewError("native instance already has an owning holder")
)

var newKey = errorc.KeyFactory(Namespace)

const (
	keySegmentType      = "type"
	keySegmentEnum      = "enum"
	keySegmentNumerical = "numerical"
)

// Structured error field keys.
var (
	FieldTypeName   = newKey("name", keySegmentType)         // parselmouth.type.name
	FieldParentName = newKey("parent", keySegmentType)       // parselmouth.type.parent
	FieldReferrer   = newKey("referrer", keySegmentType)     // parselmouth.type.referrer
	FieldEnumName   = newKey("name", keySegmentEnum)         // parselmouth.enum.name
	FieldEnumLabel  = newKey("label", keySegmentEnum)        // parselmouth.enum.label
	FieldRoutine    = newKey("routine", keySegmentNumerical) // parselmouth.numerical.routine
	FieldStatus     = newKey("status", keySegmentNumerical)  // parselmouth.numerical.status
	FieldState      = newKey("state")
	FieldMember     = newKey("member")
)

// ValueError reports a string that matches no label of an enum. It
// unwraps to ErrInvalidEnumValue.
type ValueError struct {
	Value string
	Enum  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%q is not a valid value for enum type %s", e.Value, e.Enum)
}

func (e *ValueError) Unwrap() error { return ErrInvalidEnumValue }
