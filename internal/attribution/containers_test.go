package attribution

import (
	"encoding/json"
	"testing"

	"workerscope/internal/model"
	"workerscope/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContainers_Defaults(t *testing.T) {
	rows := []model.Record{
		{"worker_name": "abcdef12-w0", "type": "task", "state": "created"},
		{
			"worker_name": "abcdef12-w0", "type": "task", "state": "created",
			"job_id": nil, "build_id": nil, "build_name": nil,
		},
	}

	containers := NormalizeContainers(rows)
	require.Len(t, containers, 2)
	for _, c := range containers {
		assert.Equal(t, constants.NoID, c.JobID)
		assert.Equal(t, constants.NoID, c.BuildID)
		assert.Equal(t, constants.UnknownBuildName, c.BuildName)
		assert.ElementsMatch(t, []string{"job_name", "step_name"}, c.Missing)
	}
}

func TestNormalizeContainers_TypedValues(t *testing.T) {
	rows := []model.Record{{
		"worker_name": "abcdef12-w0",
		"type":        "task",
		"state":       "created",
		"job_id":      json.Number("42"),
		"build_id":    float64(7),
		"build_name":  "118",
		"job_name":    "unit",
		"team_name":   "main",
		"step_name":   "run-tests",
	}}

	containers := NormalizeContainers(rows)
	require.Len(t, containers, 1)
	c := containers[0]
	assert.Equal(t, int64(42), c.JobID)
	assert.Equal(t, int64(7), c.BuildID)
	assert.Equal(t, "118", c.BuildName)
	assert.Equal(t, "unit", c.JobName)
	assert.Equal(t, "main", c.TeamName)
	assert.Equal(t, "run-tests", c.StepName)
	assert.Empty(t, c.Missing)
}

func TestNormalizeContainers_Filters(t *testing.T) {
	rows := []model.Record{
		{"worker_name": "w", "type": "task", "state": "created", "step_name": "keep"},
		{"worker_name": "w", "type": "check", "state": "created", "step_name": "check"},
		{"worker_name": "w", "type": "task", "state": "destroying", "step_name": "gone"},
		{"worker_name": "w", "type": "get", "state": "creating", "step_name": "fetch"},
		{"worker_name": "w", "state": "created", "step_name": "untyped"},
	}

	containers := NormalizeContainers(rows)
	require.Len(t, containers, 1)
	assert.Equal(t, "keep", containers[0].StepName)
}

func TestNormalizeContainers_Empty(t *testing.T) {
	assert.Empty(t, NormalizeContainers(nil))
	assert.NotNil(t, NormalizeContainers(nil))
}
