package source

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"workerscope/pkg/interfaces"
)

var authMarkers = []string{"not authorized", "token expired", "not logged in", "invalid_token", "unauthorized"}

var notFoundMarkers = []string{"unknown target", "doesn't exist", "does not exist", "not found"}

// Classify turns a fetch error into a SourceFailure for the status sanitizer
func Classify(err error) interfaces.SourceFailure {
	if err == nil {
		return interfaces.SourceFailure{}
	}

	failure := interfaces.SourceFailure{
		Type:    interfaces.FailureTypeUnknown,
		Message: err.Error(),
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		failure.Reason = firstLine(cmdErr.Stderr)
	}
	if failure.Reason == "" {
		failure.Reason = firstLine(err.Error())
	}

	lower := strings.ToLower(failure.Message)
	switch {
	case isStartFailure(err):
		failure.Type = interfaces.FailureTypeCommandMissing
	case errors.Is(err, context.DeadlineExceeded):
		failure.Type = interfaces.FailureTypeTimeout
		failure.Reason = "deadline exceeded"
	case errors.Is(err, ErrNoData):
		failure.Type = interfaces.FailureTypeNoData
	case errors.Is(err, ErrMalformedOutput):
		failure.Type = interfaces.FailureTypeMalformedOutput
	case containsAny(lower, authMarkers):
		failure.Type = interfaces.FailureTypeAuth
	case containsAny(lower, notFoundMarkers):
		failure.Type = interfaces.FailureTypeNotFound
	}

	return failure
}

// isStartFailure reports whether the binary could not be started at all
func isStartFailure(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
