package core

// # Error Codes Reference
//
// User-facing errors carry a code that users can quote to support.
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Missing header: Project Name or Job Code could not be found
//	           Patterns: "missing required metadata"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large           Patterns: "file too large"
//	FILE002 - Unreadable spreadsheet   Patterns: "invalid workbook"
//	FILE003 - No file                  Patterns: "no file provided"
//	FILE004 - Empty file               Patterns: "empty file"
//	FILE005 - Malformed upload form    Patterns: "invalid upload form"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy               Patterns: "too many concurrent imports"
//	IMP002 - Bad project/log/version   Patterns: "invalid borelog identity"
//	IMP003 - Storage write failed      Patterns: "store parse document"
//	IMP004 - Request cancelled         Patterns: "context canceled"
//	IMP005 - Import timed out          Patterns: "context deadline exceeded"
//
// # History Errors (DB001-DB099)
//
//	DB001 - History disabled           Patterns: "import history is disabled"
//	DB002 - Connection refused         Patterns: "connection refused"
//	DB003 - Connection reset           Patterns: "connection reset"
//	DB004 - Timeout                    Patterns: "timeout"
//
// # Auth Errors (AUTH001-AUTH099)
//
// Written by the API key middleware rather than MapError.
//
//	AUTH001 - Missing X-API-Key header
//	AUTH002 - Unknown API key
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

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

var errorPatterns = []errorPattern{
	{
		pattern: "missing required metadata",
		msg: UserMessage{
			Message: "The borehole log header is incomplete",
			Action:  "Make sure the export contains both Project Name and Job Code",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused sheets or export the log as CSV",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Save the file as .xlsx or export the log as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was uploaded",
			Action:  "Attach the borehole log export as the \"file\" field",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a borehole log export with content",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Send the export as multipart form field \"file\" or as the raw request body",
			Code:    "FILE005",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "invalid borelog identity",
		msg: UserMessage{
			Message: "The project, borehole log or version is not valid",
			Action:  "Check the IDs in the request path; versions start at 1",
			Code:    "IMP002",
		},
	},
	{
		pattern: "store parse document",
		msg: UserMessage{
			Message: "The parsed log could not be saved",
			Action:  "Please try again in a few moments",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The import took too long",
			Action:  "Try again later or split the export into smaller files",
			Code:    "IMP005",
		},
	},
	{
		pattern: "import history is disabled",
		msg: UserMessage{
			Message: "Import history is not enabled on this server",
			Action:  "Ask an administrator to configure DATABASE_URL",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the history database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
