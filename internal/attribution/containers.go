package attribution

import (
	"workerscope/internal/model"
	"workerscope/pkg/constants"
)

// NormalizeContainers applies the container defaults and keeps only
// created task containers. An empty input is a valid "nothing running" state.
func NormalizeContainers(rows []model.Record) []model.Container {
	containers := make([]model.Container, 0, len(rows))
	for _, row := range rows {
		c := normalizeContainer(row)
		if c.Type != constants.ContainerTypeTask || c.State != constants.ContainerStateCreated {
			continue
		}
		containers = append(containers, c)
	}
	return containers
}

func normalizeContainer(row model.Record) model.Container {
	s := ContainerSchema
	c := model.Container{}
	c.WorkerName, _ = s.String(row, "worker_name")
	c.Type, _ = s.String(row, "type")
	c.State, _ = s.String(row, "state")
	c.JobID, _ = s.Int(row, "job_id")
	c.BuildID, _ = s.Int(row, "build_id")
	c.BuildName, _ = s.String(row, "build_name")
	c.JobName, _ = s.String(row, "job_name")
	c.TeamName, _ = s.String(row, "team_name")
	c.StepName, _ = s.String(row, "step_name")
	c.Missing = s.missingOutputs(row)
	return c
}
