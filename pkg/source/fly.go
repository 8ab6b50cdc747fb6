package source

import (
	"context"
	"fmt"

	"workerscope/internal/model"
)

// FlyClient reads the Concourse container and build inventory through fly
type FlyClient struct {
	runner Runner
	binary string
}

// NewFlyClient creates a client; an empty binary means "fly" on PATH
func NewFlyClient(runner Runner, binary string) *FlyClient {
	if binary == "" {
		binary = "fly"
	}
	return &FlyClient{runner: runner, binary: binary}
}

// ContainersArgs is the fly command line listing containers
func ContainersArgs(target string) []string {
	return []string{"-t", target, "containers", "--json"}
}

// BuildsArgs is the fly command line listing builds
func BuildsArgs(target string) []string {
	return []string{"-t", target, "builds", "--json"}
}

// FetchContainers runs fly -t <target> containers --json
func (c *FlyClient) FetchContainers(ctx context.Context, target string) ([]model.Record, error) {
	return c.fetch(ctx, target, ContainersArgs(target))
}

// FetchBuilds runs fly -t <target> builds --json
func (c *FlyClient) FetchBuilds(ctx context.Context, target string) ([]model.Record, error) {
	return c.fetch(ctx, target, BuildsArgs(target))
}

func (c *FlyClient) fetch(ctx context.Context, target string, args []string) ([]model.Record, error) {
	if target == "" {
		return nil, fmt.Errorf("fly target is required")
	}
	data, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}
