package source

import (
	"context"
	"fmt"

	"workerscope/internal/model"
)

// BoshClient reads VM vitals through the bosh CLI
type BoshClient struct {
	runner Runner
	binary string
}

// NewBoshClient creates a client; an empty binary means "bosh" on PATH
func NewBoshClient(runner Runner, binary string) *BoshClient {
	if binary == "" {
		binary = "bosh"
	}
	return &BoshClient{runner: runner, binary: binary}
}

// VitalsArgs is the bosh command line for a deployment's vitals
func VitalsArgs(deployment string) []string {
	return []string{"-d", deployment, "vms", "--vitals", "--json"}
}

// FetchVitals runs bosh -d <deployment> vms --vitals --json
func (c *BoshClient) FetchVitals(ctx context.Context, deployment string) ([]model.Record, error) {
	if deployment == "" {
		return nil, fmt.Errorf("deployment name is required")
	}
	data, err := c.runner.Run(ctx, c.binary, VitalsArgs(deployment)...)
	if err != nil {
		return nil, err
	}
	rows, err := decodeBoshRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: deployment %s has no vms", ErrNoData, deployment)
	}
	return rows, nil
}
