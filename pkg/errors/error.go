package errors

import (
	"fmt"
	"strings"

	stderrors "errors"
)

// Kind classifies a request decoding failure.
type Kind uint32

const (
	KUnknown Kind = iota
	KMissingParameter
	KMalformedNumber
	KNotPositive
	KOutOfRange
	KIllegalBoolean
	KMalformedBase64
	KUndefinedProfile
	KDuplicateProfileProperty
	KPairedParameterMissing
	KUnsupportedFormat
	kNumKinds
)

var kindNames = [kNumKinds]string{
	"Unknown",
	"MissingParameter",
	"MalformedNumber",
	"NotPositive",
	"OutOfRange",
	"IllegalBoolean",
	"MalformedBase64",
	"UndefinedProfile",
	"DuplicateProfileProperty",
	"PairedParameterMissing",
	"UnsupportedFormat",
}

// Kind sentinels, for use with errors.Is.
var (
	ErrMissingParameter         = &Error{kind: KMissingParameter}
	ErrMalformedNumber          = &Error{kind: KMalformedNumber}
	ErrNotPositive              = &Error{kind: KNotPositive}
	ErrOutOfRange               = &Error{kind: KOutOfRange}
	ErrIllegalBoolean           = &Error{kind: KIllegalBoolean}
	ErrMalformedBase64          = &Error{kind: KMalformedBase64}
	ErrUndefinedProfile         = &Error{kind: KUndefinedProfile}
	ErrDuplicateProfileProperty = &Error{kind: KDuplicateProfileProperty}
	ErrPairedParameterMissing   = &Error{kind: KPairedParameterMissing}
	ErrUnsupportedFormat        = &Error{kind: KUnsupportedFormat}
)

func (k Kind) String() string {
	if k < kNumKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Error is a request decoding failure. The message is surfaced to the
// client verbatim.
type Error struct {
	what string
	kind Kind
}

func NewError(kind Kind, what string) *Error {
	return &Error{what: what, kind: kind}
}

func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{what: fmt.Sprintf(format, args...), kind: kind}
}

// MissingParameter is the failure for a required key with no value.
func MissingParameter(key string) *Error {
	return Errorf(KMissingParameter,
		"Internal server error. Property \"%s\" has no value in current request", strings.ToUpper(key))
}

func (e *Error) Error() string {
	return e.what
}

func (e *Error) Kind() Kind {
	return e.kind
}

// Is reports a match on kind. A target carrying a message must match it too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && (t.what == "" || t.what == e.what)
}

// KindOf returns the kind of the first *Error in err's chain, KUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KUnknown
}
