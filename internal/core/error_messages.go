// Package core provides the dataset loader and its queries.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a dataset fails to load or a query cannot be answered, the API and the CLI
// show the code so a report can be matched to the server logs.
//
// Error codes are grouped by category:
//
// # Data Errors (DATA001-DATA099)
//
// Errors raised while reading an age-group folder:
//
//	DATA001 - Not found: The dataset for this age group is not available
//	          Action: Check that the data folder contains all three files
//	          Sentinel: ErrNotFound
//
//	DATA002 - Parse: A dataset file is not valid CSV
//	          Action: Re-export the file as comma-separated UTF-8
//	          Sentinel: ErrParse, pattern "invalid csv"
//
//	DATA003 - Schema: A dataset file does not have the expected columns
//	          Action: Compare the file header with the expected layout
//	          Sentinel: ErrSchemaMismatch, pattern "schema mismatch"
//
// # Request Errors (REQ001-REQ099)
//
// Errors caused by the selection a caller made:
//
//	REQ001 - Invalid age group: The age group name is not valid
//	         Action: Choose one of the listed age groups
//	         Sentinel: ErrInvalidAgeGroup
//
//	REQ002 - Year out of range: The year is outside 1960-2023
//	         Action: Pick a year between 1960 and 2023
//	         Sentinel: ErrYearOutOfRange
//
//	REQ003 - No data: No country has a value for this selection
//	         Action: Try another indicator or year
//	         Sentinel: ErrNoData
//
//	REQ004 - Cancelled: The request was cancelled or timed out
//	         Action: Please try again
//	         Patterns: "context canceled", "context deadline exceeded"
//
//	REQ005 - Invalid query: A query parameter is missing or malformed
//	         Action: Check the indicator, year and grouping parameters
//	         Sentinel: ErrInvalidQuery
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
//	RATE002 - Busy: Too many datasets are being loaded at once
//	          Action: Please try again shortly
//	          Sentinel: ErrTooManyLoads
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinels are matched with errors.Is first, in table order. Errors that
// crossed a boundary as plain text (for example a CLI message) fall back to
// case-insensitive strings.Contains on the patterns. The first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message" yaml:"message"` // What happened (user-friendly)
	Action  string `json:"action" yaml:"action"`   // What to do about it
	Code    string `json:"code" yaml:"code"`       // Error code for support reference
}

// errorPattern maps a sentinel and/or text patterns to a user message.
type errorPattern struct {
	target   error
	patterns []string
	msg      UserMessage
}

// errorPatterns is ordered: specific before general.
var errorPatterns = []errorPattern{
	// Data errors
	{
		target: ErrNotFound,
		msg: UserMessage{
			Message: "The dataset for this age group is not available",
			Action:  "Check that the data folder contains all three files",
			Code:    "DATA001",
		},
	},
	{
		target:   ErrParse,
		patterns: []string{"invalid csv"},
		msg: UserMessage{
			Message: "A dataset file is not valid CSV",
			Action:  "Re-export the file as comma-separated UTF-8",
			Code:    "DATA002",
		},
	},
	{
		target:   ErrSchemaMismatch,
		patterns: []string{"schema mismatch"},
		msg: UserMessage{
			Message: "A dataset file does not have the expected columns",
			Action:  "Compare the file header with the expected layout",
			Code:    "DATA003",
		},
	},

	// Request errors
	{
		target: ErrInvalidAgeGroup,
		msg: UserMessage{
			Message: "The age group name is not valid",
			Action:  "Choose one of the listed age groups",
			Code:    "REQ001",
		},
	},
	{
		target: ErrYearOutOfRange,
		msg: UserMessage{
			Message: "The year is outside the available range",
			Action:  "Pick a year between 1960 and 2023",
			Code:    "REQ002",
		},
	},
	{
		target: ErrNoData,
		msg: UserMessage{
			Message: "No country has a value for this selection",
			Action:  "Try another indicator or year",
			Code:    "REQ003",
		},
	},
	{
		target: ErrInvalidQuery,
		msg: UserMessage{
			Message: "A query parameter is missing or malformed",
			Action:  "Check the indicator, year and grouping parameters",
			Code:    "REQ005",
		},
	},
	{
		target:   context.Canceled,
		patterns: []string{"context canceled"},
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},
	{
		target:   context.DeadlineExceeded,
		patterns: []string{"context deadline exceeded"},
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},

	// Rate limiting
	{
		target: ErrTooManyLoads,
		msg: UserMessage{
			Message: "The server is busy loading other datasets",
			Action:  "Please try again shortly",
			Code:    "RATE002",
		},
	},
	{
		patterns: []string{"rate limit"},
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := loader.Load(ctx, "15_99")
//	msg := MapError(err)
//	// msg.Code == "DATA001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		for _, p := range ep.patterns {
			if strings.Contains(errStr, p) {
				return ep.msg
			}
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
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
