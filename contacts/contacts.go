package contacts

import (
	"errors"
	"fmt"

	"github.com/spachava753/contactbridge/contactkey"
	"github.com/spachava753/contactbridge/datecomp"
)

// ErrorCode classifies package errors.
type ErrorCode string

const (
	// ErrorCodeInvalidIdentifier indicates no usable identifier for the mode.
	ErrorCodeInvalidIdentifier ErrorCode = "invalid_identifier"
	// ErrorCodeInvalidKeys indicates keys that fail the pre-operation check.
	ErrorCodeInvalidKeys ErrorCode = "invalid_keys"
	// ErrorCodeMalformedInput indicates a transfer map with wrongly typed fields.
	ErrorCodeMalformedInput ErrorCode = "malformed_input"
	// ErrorCodeNotFound indicates a referenced contact does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeValidation indicates invalid arguments.
	ErrorCodeValidation ErrorCode = "validation"
	// ErrorCodeUnsupported indicates an unknown operation.
	ErrorCodeUnsupported ErrorCode = "unsupported"
	// ErrorCodeStore indicates a storage or row stream failure.
	ErrorCodeStore ErrorCode = "store"
	// ErrorCodeUnknown indicates an unmapped error.
	ErrorCodeUnknown ErrorCode = "unknown"
)

// Error is a typed package error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("contacts: %s", e.Code)
	}
	return fmt.Sprintf("contacts: %s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Code returns the ErrorCode of err. Key model sentinels map to their codes;
// errors without a known classification map to ErrorCodeUnknown.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	switch {
	case errors.Is(err, contactkey.ErrInvalidIdentifier):
		return ErrorCodeInvalidIdentifier
	case errors.Is(err, contactkey.ErrInvalidKeys):
		return ErrorCodeInvalidKeys
	}
	return ErrorCodeUnknown
}

// Item is one labeled value, such as a phone number or email address.
type Item struct {
	Label string
	Value string
}

// DateItem is one labeled partial date, such as a birthday.
type DateItem struct {
	Label string
	Date  datecomp.Components
}

// Contact is a logical contact reconstructed from data rows.
//
// Identifier is the grouping key the contact was built from: the aggregated
// contact id in unified mode, the raw contact id in single mode. Zero ids and
// empty strings mean unset.
type Contact struct {
	Mode             contactkey.Mode
	Identifier       string
	UnifiedContactID int64
	SingleContactID  int64
	LookupKey        string
	LinkedContactIDs []string

	DisplayName string
	GivenName   string
	MiddleName  string
	FamilyName  string
	Prefix      string
	Suffix      string

	Phones []Item
	Emails []Item
	Dates  []DateItem

	Avatar []byte
}

// Keys returns the contact's address under its mode.
func (c Contact) Keys() (contactkey.Keys, error) {
	return contactkey.Of(c.Mode, contactkey.Bundle{
		UnifiedContactID: c.UnifiedContactID,
		SingleContactID:  c.SingleContactID,
		LookupKey:        c.LookupKey,
		Identifier:       c.Identifier,
	})
}
