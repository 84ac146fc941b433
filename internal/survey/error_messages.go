package survey

// error_messages.go maps technical errors to messages a survey analyst can act on.
//
// Codes are grouped by category and quoted back to support:
//
//	FILE001 - File too large            (ErrFileTooLarge, "file too large")
//	FILE002 - Could not parse file      ("invalid csv")
//	FILE003 - Encoding error            ("encoding error")
//	FILE004 - No file selected          ("no file provided")
//	FILE005 - Empty file                (ErrEmptyInput, "empty file")
//	VAL001  - Malformed row, strict     (ErrMalformedRow)
//	VAL005  - Column not found          (ErrUnknownColumn, "column not found")
//	AUTH001 - Not signed in             ("not authenticated")
//	AUTH002 - Sign-in failed            ("authentication failed")
//	UPL002  - System busy               ("too many analyses")
//	UPL004  - Request cancelled         ("context canceled")
//	UPL005  - Request timed out         ("context deadline exceeded")
//	RATE001 - Rate limited              ("rate limit")
//	ERR000  - Anything else; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is first. Errors from other
// packages are matched by case-insensitive substring, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Remove unused columns or split the survey export",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "Could not parse file",
		Action:  "Select a comma-separated survey export and try again",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8 and upload it again",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row",
		Code:    "FILE005",
	}
	msgMalformedRow = UserMessage{
		Message: "A row has fewer values than the header",
		Action:  "Fix the reported line or turn off strict parsing",
		Code:    "VAL001",
	}
	msgUnknownColumn = UserMessage{
		Message: "Expected column not found in CSV",
		Action:  "Check the column settings against the file's header row",
		Code:    "VAL005",
	}
	msgUnknownChart = UserMessage{
		Message: "Unknown chart",
		Action:  "Request one of the scatter, heatmap or bar charts",
		Code:    "VAL006",
	}
	msgNotAuthenticated = UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in and try again",
		Code:    "AUTH001",
	}
	msgAuthFailed = UserMessage{
		Message: "Sign-in failed",
		Action:  "Start the sign-in again",
		Code:    "AUTH002",
	}
	msgBusy = UserMessage{
		Message: "System is busy analyzing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrEmptyInput, msgEmptyFile},
	{ErrMalformedRow, msgMalformedRow},
	{ErrUnknownColumn, msgUnknownColumn},
	{ErrLengthMismatch, msgInvalidCSV},
	{ErrUnknownChart, msgUnknownChart},
}

// errorPatterns is searched in order; specific patterns come first.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"encoding error", msgEncoding},
	{"no file provided", msgNoFile},
	{"empty file", msgEmptyFile},
	{"invalid csv", msgInvalidCSV},
	{"column not found", msgUnknownColumn},
	{"unknown chart kind", msgUnknownChart},
	{"not authenticated", msgNotAuthenticated},
	{"authentication failed", msgAuthFailed},
	{"too many analyses", msgBusy},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"rate limit", msgRateLimited},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
