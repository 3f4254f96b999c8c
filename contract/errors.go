package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind groups failures the way callers care about them.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindUnauthorized means the caller is not allowed to run this entry point.
	KindUnauthorized
	// KindInvalidState covers missing entities, wrong status and closed windows.
	KindInvalidState
	// KindAlreadyDone is double vote, double claim, double curation.
	KindAlreadyDone
	// KindInsufficientValue is a bid below the minimum or funds below a price.
	KindInsufficientValue
	// KindExhausted is a capacity or index bound that was exceeded.
	KindExhausted
	// KindInvalidInput is a payload we could not even parse.
	KindInvalidInput
)

// String gives the short lower-case name used in error payloads.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindAlreadyDone:
		return "already_done"
	case KindInsufficientValue:
		return "insufficient_value"
	case KindExhausted:
		return "exhausted"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ParseKind is the reverse of Kind.String.
func ParseKind(s string) Kind {
	for k := KindUnauthorized; k <= KindInvalidInput; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindUnknown
}

// Shared codes, every contract package numbers its own codes from 100 upwards.
const (
	CodeUnknownMethod uint16 = 1
	CodeBadPayload    uint16 = 2
	CodeReentrant     uint16 = 3
	CodeCallDepth     uint16 = 4
	CodeNotAdmin      uint16 = 5
	CodeNotConfigured uint16 = 6
	CodeSubCall       uint16 = 7
	CodePanic         uint16 = 8
)

// Error is the structured failure every entry point returns. The tx is discarded as a
// whole whenever one of these surfaces at the top.
type Error struct {
	Kind Kind
	Code uint16
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s(%d): %s", e.Kind, e.Code, e.Msg)
}

// Payload renders the error the way callers see it on a failed tx.
// Format: err|kind:<kind>|code:<code>|msg:<msg>
func (e *Error) Payload() string {
	return fmt.Sprintf("err|kind:%s|code:%d|msg:%s", e.Kind, e.Code, e.Msg)
}

// Is matches on kind and code so errors.Is works against the exported sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// ParseErrorPayload rebuilds an Error from Payload output.
func ParseErrorPayload(s string) (*Error, bool) {
	ev, ok := ParseEvent(s)
	if !ok || ev.Tag != "err" {
		return nil, false
	}
	code, err := strconv.ParseUint(ev.Fields["code"], 10, 16)
	if err != nil {
		return nil, false
	}
	// the message is last and may carry ':' so take the raw tail
	msg := ""
	if idx := strings.Index(s, "|msg:"); idx >= 0 {
		msg = s[idx+len("|msg:"):]
	}
	return &Error{Kind: ParseKind(ev.Fields["kind"]), Code: uint16(code), Msg: msg}, true
}

func newError(kind Kind, code uint16, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(code uint16, format string, args ...any) *Error {
	return newError(KindUnauthorized, code, format, args...)
}

// InvalidState builds a KindInvalidState error.
func InvalidState(code uint16, format string, args ...any) *Error {
	return newError(KindInvalidState, code, format, args...)
}

// AlreadyDone builds a KindAlreadyDone error.
func AlreadyDone(code uint16, format string, args ...any) *Error {
	return newError(KindAlreadyDone, code, format, args...)
}

// InsufficientValue builds a KindInsufficientValue error.
func InsufficientValue(code uint16, format string, args ...any) *Error {
	return newError(KindInsufficientValue, code, format, args...)
}

// Exhausted builds a KindExhausted error.
func Exhausted(code uint16, format string, args ...any) *Error {
	return newError(KindExhausted, code, format, args...)
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(code uint16, format string, args ...any) *Error {
	return newError(KindInvalidInput, code, format, args...)
}

// KindOf digs the kind out of any error, plain errors count as unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsError returns the typed error inside err. Untyped failures (a broken sub call,
// a storage hiccup) become InvalidState so the caller still gets a structured payload.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InvalidState(CodeSubCall, "%v", err)
}
