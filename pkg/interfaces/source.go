package interfaces

import (
	"context"

	"workerscope/internal/model"
)

// VitalsSource provides bosh VM vitals for a deployment
type VitalsSource interface {
	FetchVitals(ctx context.Context, deployment string) ([]model.Record, error)
}

// InventorySource provides the Concourse container and build inventory for a fly target
type InventorySource interface {
	FetchContainers(ctx context.Context, target string) ([]model.Record, error)
	FetchBuilds(ctx context.Context, target string) ([]model.Record, error)
}

// FailureType classifies why a source could not deliver data
type FailureType string

const (
	FailureTypeCommandMissing  FailureType = "COMMAND_MISSING"
	FailureTypeAuth            FailureType = "AUTH_FAILED"
	FailureTypeNotFound        FailureType = "NOT_FOUND"
	FailureTypeTimeout         FailureType = "TIMEOUT"
	FailureTypeMalformedOutput FailureType = "MALFORMED_OUTPUT"
	FailureTypeNoData          FailureType = "NO_DATA"
	FailureTypeUnknown         FailureType = "UNKNOWN"
)

// SourceFailure describes a failed fetch in terms the sanitizer understands
type SourceFailure struct {
	Type    FailureType `json:"type"`
	Reason  string      `json:"reason"`  // short machine reason, e.g. the stderr first line
	Message string      `json:"message"` // raw detail, may contain sensitive fragments
}
