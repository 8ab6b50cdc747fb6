package model

// Build is one pipeline build. BuildID is the source "id" field.
type Build struct {
	BuildID      int64  `json:"build_id"`
	Status       string `json:"status"`
	TeamName     string `json:"team_name"`
	PipelineName string `json:"pipeline_name"`
	JobName      string `json:"job_name"`

	// Missing lists output columns the source row did not carry.
	Missing []string `json:"-"`
}
