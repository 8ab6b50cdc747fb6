package attribution

import (
	"workerscope/internal/model"
	"workerscope/pkg/constants"
)

// SelectActiveBuilds reads builds (id aliased to build_id) and keeps the
// started ones. Rows without an id or status cannot be referenced and are skipped.
func SelectActiveBuilds(rows []model.Record) []model.Build {
	builds := make([]model.Build, 0, len(rows))
	for _, row := range rows {
		if len(BuildSchema.Missing(row)) > 0 {
			continue
		}
		b, ok := readBuild(row)
		if !ok {
			continue
		}
		builds = append(builds, b)
	}
	return FilterStarted(builds)
}

// FilterStarted keeps builds whose status is "started". It is idempotent.
func FilterStarted(builds []model.Build) []model.Build {
	started := make([]model.Build, 0, len(builds))
	for _, b := range builds {
		if b.Status == constants.BuildStatusStarted {
			started = append(started, b)
		}
	}
	return started
}

func readBuild(row model.Record) (model.Build, bool) {
	s := BuildSchema
	id, ok := s.Int(row, "build_id")
	if !ok {
		return model.Build{}, false
	}
	b := model.Build{BuildID: id}
	b.Status, _ = s.String(row, "status")
	b.TeamName, _ = s.String(row, "team_name")
	b.PipelineName, _ = s.String(row, "pipeline_name")
	b.JobName, _ = s.String(row, "job_name")
	b.Missing = s.missingOutputs(row)
	return b, true
}
