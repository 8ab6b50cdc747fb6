// Package status turns raw bosh and fly failures into short, actionable
// messages and strips sensitive fragments from anything that is shown to users.
package status

import (
	"cmp"
	"maps"
	"regexp"
	"slices"
	"strings"

	"workerscope/pkg/interfaces"
)

// StatusSanitizer maps source failures to user-facing messages
type StatusSanitizer struct {
	errorMappings     map[interfaces.FailureType]map[string]SanitizedError
	matchOrder        map[interfaces.FailureType][]string
	sensitivePatterns []*sensitivePattern
}

// SanitizedError is a user-facing failure with a suggestion
type SanitizedError struct {
	UserMessage string `json:"userMessage"`
	Suggestion  string `json:"suggestion"`
	ErrorCode   string `json:"errorCode"`
}

// String renders "message. suggestion"
func (e SanitizedError) String() string {
	if e.Suggestion == "" {
		return e.UserMessage
	}
	return e.UserMessage + ". " + e.Suggestion
}

type sensitivePattern struct {
	pattern     *regexp.Regexp
	replacement string
	description string
}

// CommandMissingErrorMappings cover a missing bosh or fly binary
var CommandMissingErrorMappings = map[string]SanitizedError{
	"executable file not found": {
		UserMessage: "Command line tool not found",
		Suggestion:  "Install bosh and fly, or set sources.bosh_binary / sources.fly_binary",
		ErrorCode:   "CMD_NOT_FOUND",
	},
	"no such file or directory": {
		UserMessage: "Command line tool not found",
		Suggestion:  "Check the path in sources.bosh_binary / sources.fly_binary",
		ErrorCode:   "CMD_NOT_FOUND",
	},
	"permission denied": {
		UserMessage: "Command line tool is not executable",
		Suggestion:  "Check the file permissions of the configured binary",
		ErrorCode:   "CMD_NOT_EXECUTABLE",
	},
	"default": {
		UserMessage: "Command line tool could not be started",
		Suggestion:  "Check sources.bosh_binary and sources.fly_binary",
		ErrorCode:   "CMD_ERROR",
	},
}

// AuthErrorMappings cover expired or missing logins
var AuthErrorMappings = map[string]SanitizedError{
	"not authorized": {
		UserMessage: "Not logged in to Concourse",
		Suggestion:  "Run fly -t <target> login and retry",
		ErrorCode:   "AUTH_FLY_LOGIN",
	},
	"token expired": {
		UserMessage: "Concourse token expired",
		Suggestion:  "Run fly -t <target> login to refresh the token",
		ErrorCode:   "AUTH_FLY_EXPIRED",
	},
	"Not logged in": {
		UserMessage: "Not logged in to the BOSH director",
		Suggestion:  "Run bosh log-in or export BOSH_CLIENT and BOSH_CLIENT_SECRET",
		ErrorCode:   "AUTH_BOSH_LOGIN",
	},
	"invalid_token": {
		UserMessage: "BOSH director rejected the token",
		Suggestion:  "Run bosh log-in again",
		ErrorCode:   "AUTH_BOSH_TOKEN",
	},
	"default": {
		UserMessage: "Authentication failed",
		Suggestion:  "Log in to bosh and fly, then retry",
		ErrorCode:   "AUTH_FAILED",
	},
}

// NotFoundErrorMappings cover unknown deployments and targets
var NotFoundErrorMappings = map[string]SanitizedError{
	"unknown target": {
		UserMessage: "Unknown fly target",
		Suggestion:  "Check fly targets, or log in with fly -t <target> login -c <url>",
		ErrorCode:   "NOT_FOUND_TARGET",
	},
	"doesn't exist": {
		UserMessage: "BOSH deployment not found",
		Suggestion:  "Check bosh deployments for the correct name",
		ErrorCode:   "NOT_FOUND_DEPLOYMENT",
	},
	"default": {
		UserMessage: "Requested resource not found",
		Suggestion:  "Check the deployment and target names",
		ErrorCode:   "NOT_FOUND",
	},
}

// TimeoutErrorMappings cover commands that ran too long
var TimeoutErrorMappings = map[string]SanitizedError{
	"deadline exceeded": {
		UserMessage: "Command timed out",
		Suggestion:  "Increase sources.timeout or check connectivity to the director and Concourse",
		ErrorCode:   "TIMEOUT_COMMAND",
	},
	"default": {
		UserMessage: "Operation timed out",
		Suggestion:  "Please try again later",
		ErrorCode:   "TIMEOUT",
	},
}

// MalformedOutputErrorMappings cover output that is not the expected JSON
var MalformedOutputErrorMappings = map[string]SanitizedError{
	"no tables": {
		UserMessage: "BOSH returned no vitals table",
		Suggestion:  "Check that the deployment has VMs",
		ErrorCode:   "OUTPUT_NO_TABLE",
	},
	"default": {
		UserMessage: "Unexpected command output",
		Suggestion:  "Check that bosh and fly versions support --json",
		ErrorCode:   "OUTPUT_MALFORMED",
	},
}

// NoDataErrorMappings cover empty but successful fetches
var NoDataErrorMappings = map[string]SanitizedError{
	"default": {
		UserMessage: "Source returned no data",
		Suggestion:  "Nothing may be running right now",
		ErrorCode:   "NO_DATA",
	},
}

// UnknownErrorMappings is the fallback for unclassified failures
var UnknownErrorMappings = map[string]SanitizedError{
	"default": {
		UserMessage: "Unknown error occurred",
		Suggestion:  "Re-run with logger.level: debug for details",
		ErrorCode:   "UNKNOWN_ERROR",
	},
}

// NewStatusSanitizer creates a sanitizer with the default mappings and patterns
func NewStatusSanitizer() *StatusSanitizer {
	s := &StatusSanitizer{
		errorMappings:     make(map[interfaces.FailureType]map[string]SanitizedError),
		matchOrder:        make(map[interfaces.FailureType][]string),
		sensitivePatterns: buildDefaultSensitivePatterns(),
	}

	s.errorMappings[interfaces.FailureTypeCommandMissing] = maps.Clone(CommandMissingErrorMappings)
	s.errorMappings[interfaces.FailureTypeAuth] = maps.Clone(AuthErrorMappings)
	s.errorMappings[interfaces.FailureTypeNotFound] = maps.Clone(NotFoundErrorMappings)
	s.errorMappings[interfaces.FailureTypeTimeout] = maps.Clone(TimeoutErrorMappings)
	s.errorMappings[interfaces.FailureTypeMalformedOutput] = maps.Clone(MalformedOutputErrorMappings)
	s.errorMappings[interfaces.FailureTypeNoData] = maps.Clone(NoDataErrorMappings)
	s.errorMappings[interfaces.FailureTypeUnknown] = maps.Clone(UnknownErrorMappings)

	for failureType, mappings := range s.errorMappings {
		s.matchOrder[failureType] = substringKeys(mappings)
	}

	return s
}

// substringKeys lists the non-default keys longest first, then alphabetically,
// so a reason matching several keys always resolves to the most specific one.
func substringKeys(mappings map[string]SanitizedError) []string {
	keys := make([]string, 0, len(mappings))
	for key := range mappings {
		if key != "default" {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

func buildDefaultSensitivePatterns() []*sensitivePattern {
	return []*sensitivePattern{
		// Credentials embedded in URLs must go before the IP patterns
		{
			pattern:     regexp.MustCompile(`https?://[^:/\s]+:[^@\s]+@[a-zA-Z0-9][-a-zA-Z0-9_.:]*`),
			replacement: "[url-with-credentials]",
			description: "URL with credentials",
		},
		{
			pattern:     regexp.MustCompile(`(?i)\bbearer\s+[a-zA-Z0-9._~+/=-]+`),
			replacement: "Bearer [redacted]",
			description: "bearer token",
		},
		{
			pattern:     regexp.MustCompile(`(?i)\b(token|secret|password|client_secret)(["']?\s*[=:]\s*["']?)[^\s"',&]+`),
			replacement: "$1$2[redacted]",
			description: "key=value secret",
		},
		{
			pattern:     regexp.MustCompile(`\b10\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "10.x.x.x private IP",
		},
		{
			pattern:     regexp.MustCompile(`\b172\.(1[6-9]|2[0-9]|3[0-1])\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "172.16-31.x.x private IP",
		},
		{
			pattern:     regexp.MustCompile(`\b192\.168\.\d{1,3}\.\d{1,3}\b`),
			replacement: "[internal-ip]",
			description: "192.168.x.x private IP",
		},
	}
}

// Sanitize maps a failure type and reason to a user-facing message.
// Lookup order: exact reason, case-insensitive reason, reason containing a
// known key, message containing a known key, then the type default.
func (s *StatusSanitizer) Sanitize(failureType interfaces.FailureType, reason, message string) *SanitizedError {
	mappings, ok := s.errorMappings[failureType]
	keys := s.matchOrder[failureType]
	if !ok {
		mappings = s.errorMappings[interfaces.FailureTypeUnknown]
		keys = s.matchOrder[interfaces.FailureTypeUnknown]
	}

	if sanitized, ok := mappings[reason]; ok {
		return &sanitized
	}

	reasonLower := strings.ToLower(reason)
	for _, key := range keys {
		if strings.ToLower(key) == reasonLower {
			sanitized := mappings[key]
			return &sanitized
		}
	}

	for _, key := range keys {
		if strings.Contains(reasonLower, strings.ToLower(key)) {
			sanitized := mappings[key]
			return &sanitized
		}
	}

	messageLower := strings.ToLower(message)
	for _, key := range keys {
		if strings.Contains(messageLower, strings.ToLower(key)) {
			sanitized := mappings[key]
			return &sanitized
		}
	}

	if defaultErr, ok := mappings["default"]; ok {
		return &defaultErr
	}

	return &SanitizedError{
		UserMessage: "An error occurred",
		Suggestion:  "Re-run with logger.level: debug for details",
		ErrorCode:   "ERROR",
	}
}

// SanitizeSensitiveInfo redacts credentials, tokens and internal IPs
func (s *StatusSanitizer) SanitizeSensitiveInfo(message string) string {
	if message == "" {
		return message
	}

	result := message
	for _, sp := range s.sensitivePatterns {
		result = sp.pattern.ReplaceAllString(result, sp.replacement)
	}
	return result
}

// AddErrorMapping adds or replaces a mapping for a failure type and reason
func (s *StatusSanitizer) AddErrorMapping(failureType interfaces.FailureType, reason string, sanitized SanitizedError) {
	if _, ok := s.errorMappings[failureType]; !ok {
		s.errorMappings[failureType] = make(map[string]SanitizedError)
	}
	s.errorMappings[failureType][reason] = sanitized
	s.matchOrder[failureType] = substringKeys(s.errorMappings[failureType])
}

// AddSensitivePattern adds a redaction pattern
func (s *StatusSanitizer) AddSensitivePattern(pattern *regexp.Regexp, replacement, description string) {
	s.sensitivePatterns = append(s.sensitivePatterns, &sensitivePattern{
		pattern:     pattern,
		replacement: replacement,
		description: description,
	})
}

// SanitizeFailure renders a source failure as one user-facing line
func (s *StatusSanitizer) SanitizeFailure(failure interfaces.SourceFailure) string {
	sanitized := s.Sanitize(failure.Type, failure.Reason, failure.Message)
	return s.SanitizeSensitiveInfo(sanitized.String()) + " [" + sanitized.ErrorCode + "]"
}
