package model

// Container is a normalized unit of scheduled work on a worker.
// JobID and BuildID are NoID when the source did not attach one.
type Container struct {
	WorkerName string `json:"worker_name"`
	Type       string `json:"type"`
	State      string `json:"state"`
	JobID      int64  `json:"job_id"`
	BuildID    int64  `json:"build_id"`
	BuildName  string `json:"build_name"`
	JobName    string `json:"job_name,omitempty"`
	TeamName   string `json:"team_name,omitempty"`
	StepName   string `json:"step_name,omitempty"`

	// Missing lists output columns the source row did not carry.
	Missing []string `json:"-"`
}
