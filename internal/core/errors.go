package core

// errors.go maps technical errors to user-facing notifications.
//
// Error codes are grouped by category:
//
//	VAL001 - Invalid form values: required fields missing or out of range
//	VAL002 - Invalid item: field-level validation failed
//	HTTP001 - Backend request failed (non-2xx); message carries the status
//	HTTP002 - Backend unreachable; status reported as "unknown"
//	IMP001 - File is not a readable spreadsheet
//	IMP002 - Unsupported spreadsheet format
//	IMP003 - Spreadsheet has no data rows
//	IMP004 - File too large
//	NF001  - Item not found
//	NF002  - Invalid item identifier
//	LIM001 - Too many imports in progress
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	ERR000 - Anything else
//
// Typed errors (sentinels, *StatusError, ValidationErrors) are matched with
// errors.Is/As first. Remaining errors fall back to case-insensitive
// substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when the backend has no item with the requested ID.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidID is returned for missing or non-numeric item identifiers.
	ErrInvalidID = errors.New("invalid item id")

	// ErrInvalidForm is returned when a create or update is attempted with
	// missing required values.
	ErrInvalidForm = errors.New("invalid form values")

	// ErrUnsupportedFormat is returned for files the importer cannot parse.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

	// ErrUnreadableFile is returned when a file is not a valid spreadsheet.
	ErrUnreadableFile = errors.New("file is not a valid spreadsheet")

	// ErrNoRows is returned when a spreadsheet has no header row at all.
	ErrNoRows = errors.New("spreadsheet is empty")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed. Status: %d", e.Method, e.Path, e.Code)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == 404
}

var statusPattern = regexp.MustCompile(`Status: (\d+)`)

// StatusOf extracts the HTTP status from err. It returns "unknown" when the
// error carries none, for example when the backend was unreachable.
func StatusOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.Code)
	}
	if err != nil {
		if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
			return m[1]
		}
	}
	return "unknown"
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgInvalidForm = UserMessage{
		Message: "Invalid Form Values",
		Action:  "Please ensure all required fields are filled correctly.",
		Code:    "VAL001",
	}
	msgInvalidItem = UserMessage{
		Message: "Some fields need attention",
		Action:  "Correct the highlighted fields and submit again.",
		Code:    "VAL002",
	}
	msgUnreadable = UserMessage{
		Message: "There was an error importing the file",
		Action:  "Check that the file is an .xlsx workbook or CSV and try again.",
		Code:    "IMP001",
	}
	msgUnsupported = UserMessage{
		Message: "This spreadsheet format is not supported",
		Action:  "Save the file as .xlsx or .csv and try again.",
		Code:    "IMP002",
	}
	msgNoRows = UserMessage{
		Message: "The spreadsheet is empty",
		Action:  "Add a header row naming the item fields, then one row per item.",
		Code:    "IMP003",
	}
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller workbooks.",
		Code:    "IMP004",
	}
	msgNotFound = UserMessage{
		Message: "Invalid Item!",
		Action:  "Item not found or failed to load.",
		Code:    "NF001",
	}
	msgInvalidID = UserMessage{
		Message: "Invalid Item!",
		Action:  "The provided item ID is invalid.",
		Code:    "NF002",
	}
	msgBusy = UserMessage{
		Message: "Too many imports in progress",
		Action:  "Please wait a moment and try again.",
		Code:    "LIM001",
	}
	msgCanceled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again.",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Check that the item service is running and try again.",
		Code:    "REQ002",
	}
)

// errorPatterns catches errors that arrive without a typed wrapper, such as
// transport failures from net/http.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Request failed. Status: unknown",
		Action:  "The item service is not reachable. Please try again.",
		Code:    "HTTP002",
	}},
	{"no such host", UserMessage{
		Message: "Request failed. Status: unknown",
		Action:  "The item service address could not be resolved.",
		Code:    "HTTP002",
	}},
	{"eof", UserMessage{
		Message: "Request failed. Status: unknown",
		Action:  "The item service closed the connection. Please try again.",
		Code:    "HTTP002",
	}},
	{"request body too large", msgTooLarge},
	{"zip: not a valid zip file", msgUnreadable},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again.",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again.",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var se *StatusError
	var ve ValidationErrors
	switch {
	case errors.Is(err, ErrInvalidID):
		return msgInvalidID
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrInvalidForm):
		return msgInvalidForm
	case errors.As(err, &ve):
		return msgInvalidItem
	case errors.As(err, &se):
		return UserMessage{
			Message: "Request failed. Status: " + strconv.Itoa(se.Code),
			Action:  "Please try again.",
			Code:    "HTTP001",
		}
	case errors.Is(err, ErrTooManyImports):
		return msgBusy
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge
	case errors.Is(err, ErrUnsupportedFormat):
		return msgUnsupported
	case errors.Is(err, ErrNoRows):
		return msgNoRows
	case errors.Is(err, ErrUnreadableFile):
		return msgUnreadable
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCanceled
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
