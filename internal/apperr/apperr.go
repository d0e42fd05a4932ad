// Package apperr defines the domain error taxonomy shared by the services.
//
// Services return *Error for failures the caller is expected to show to the user
// (missing records, validation messages, bad argument combinations, ownership and
// funds checks). Anything else is an infrastructure failure and is wrapped with
// fmt.Errorf as usual.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindArgument          Kind = "argument"
	KindUnauthorized      Kind = "unauthorized"
	KindInsufficientFunds Kind = "insufficient_funds"
)

// Error is a user-facing domain failure carrying one or more human readable messages.
type Error struct {
	Kind     Kind
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// New returns a domain error of the given kind.
func New(kind Kind, msgs ...string) *Error {
	return &Error{Kind: kind, Messages: msgs}
}

func NotFound(msg string) *Error {
	return New(KindNotFound, msg)
}

// Validation returns an error carrying one message per failing field or rule.
func Validation(msgs ...string) *Error {
	return New(KindValidation, msgs...)
}

func Argument(msg string) *Error {
	return New(KindArgument, msg)
}

func Unauthorized() *Error {
	return New(KindUnauthorized, "Unauthorized")
}

func InsufficientFunds(msg string) *Error {
	return New(KindInsufficientFunds, msg)
}

// KindOf reports the kind of a domain error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Messages returns the user-facing messages of a domain error.
// It returns nil for errors that are not domain errors.
func Messages(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages
	}

	return nil
}

// Collector accumulates validation messages.
type Collector struct {
	msgs []string
}

func (c *Collector) Add(msg string) {
	c.msgs = append(c.msgs, msg)
}

// Check adds msg when ok is false.
func (c *Collector) Check(ok bool, msg string) {
	if !ok {
		c.Add(msg)
	}
}

// Err returns a validation error with the collected messages, or nil if there are none.
func (c *Collector) Err() error {
	if len(c.msgs) == 0 {
		return nil
	}

	return Validation(c.msgs...)
}
