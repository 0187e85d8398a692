package core

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	UnknownError ErrorKind = iota
	SyntaxError
	NotFoundError
	ConflictError
	ConstraintError
	TypeError
)

func (kind ErrorKind) String() string {
	switch kind {
	case SyntaxError:
		return "Syntax"
	case NotFoundError:
		return "NotFound"
	case ConflictError:
		return "Conflict"
	case ConstraintError:
		return "Constraint"
	case TypeError:
		return "Type"
	default:
		return "Unknown"
	}
}

// Error is a statement-level failure. Two errors match under errors.Is when
// their kinds are equal, so callers test against the sentinels below.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrSyntax     = &Error{Kind: SyntaxError, Message: "syntax error"}
	ErrNotFound   = &Error{Kind: NotFoundError, Message: "not found"}
	ErrConflict   = &Error{Kind: ConflictError, Message: "conflict"}
	ErrConstraint = &Error{Kind: ConstraintError, Message: "constraint violation"}
	ErrType       = &Error{Kind: TypeError, Message: "type mismatch"}
)

// Errorf builds an Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnknownError
}
