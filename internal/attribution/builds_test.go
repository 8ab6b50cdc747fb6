package attribution

import (
	"encoding/json"
	"testing"

	"workerscope/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectActiveBuilds(t *testing.T) {
	rows := []model.Record{
		{"id": json.Number("7"), "status": "started", "team_name": "main", "pipeline_name": "app", "job_name": "unit"},
		{"id": json.Number("8"), "status": "succeeded", "team_name": "main", "pipeline_name": "app", "job_name": "unit"},
		{"build_id": json.Number("9"), "status": "started", "team_name": "ops", "pipeline_name": "infra", "job_name": "deploy"},
		{"status": "started", "team_name": "main"},
		{"id": json.Number("10"), "team_name": "main"},
	}

	builds := SelectActiveBuilds(rows)
	require.Len(t, builds, 2)
	assert.Equal(t, int64(7), builds[0].BuildID)
	assert.Equal(t, "app", builds[0].PipelineName)
	assert.Equal(t, int64(9), builds[1].BuildID)
	assert.Equal(t, "deploy", builds[1].JobName)
}

func TestSelectActiveBuilds_BuildIDWinsOverID(t *testing.T) {
	rows := []model.Record{{"build_id": json.Number("3"), "id": json.Number("4"), "status": "started"}}

	builds := SelectActiveBuilds(rows)
	require.Len(t, builds, 1)
	assert.Equal(t, int64(3), builds[0].BuildID)
}

func TestSelectActiveBuilds_TracksMissingColumns(t *testing.T) {
	rows := []model.Record{{"id": json.Number("7"), "status": "started", "team_name": "main"}}

	builds := SelectActiveBuilds(rows)
	require.Len(t, builds, 1)
	assert.ElementsMatch(t, []string{"pipeline_name", "job_name"}, builds[0].Missing)
}

func TestSelectActiveBuilds_Empty(t *testing.T) {
	assert.Empty(t, SelectActiveBuilds(nil))
}

func TestFilterStarted_Idempotent(t *testing.T) {
	builds := []model.Build{
		{BuildID: 1, Status: "started"},
		{BuildID: 2, Status: "failed"},
		{BuildID: 3, Status: "started"},
	}

	once := FilterStarted(builds)
	assert.Equal(t, once, FilterStarted(once))
	assert.Len(t, once, 2)
}
