package model

import "time"

// SectionOutcome classifies a worker's section in the report.
type SectionOutcome string

const (
	OutcomeAttributed     SectionOutcome = "attributed"
	OutcomeNoContainers   SectionOutcome = "no_containers"
	OutcomeNoActiveBuilds SectionOutcome = "no_active_builds"
	OutcomeError          SectionOutcome = "error"
)

// TerminationReason explains why a report stopped before the worker sections.
type TerminationReason string

const (
	TerminationNoWorkerData     TerminationReason = "no_worker_data"
	TerminationInsufficientData TerminationReason = "insufficient_data"
)

// AttributedBuildRecord is one build joined with one container on a worker.
type AttributedBuildRecord struct {
	TeamName     string `json:"team_name"`
	PipelineName string `json:"pipeline_name"`
	JobName      string `json:"job_name"`
	StepName     string `json:"step_name"`
	BuildNumber  string `json:"build_number"`
	Status       string `json:"status"`
	BuildID      int64  `json:"build_id"`
}

// SectionError is the structured, user-facing failure of a single worker section.
type SectionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// WorkerSection is the attribution result for one ranked worker.
type WorkerSection struct {
	Instance string                  `json:"instance"`
	ShortID  string                  `json:"short_id,omitempty"`
	CPUTotal float64                 `json:"cpu_total"`
	Outcome  SectionOutcome          `json:"outcome"`
	Records  []AttributedBuildRecord `json:"records,omitempty"`
	Error    *SectionError           `json:"error,omitempty"`
}

// Termination is set when the report ends early.
type Termination struct {
	Reason  TerminationReason `json:"reason"`
	Message string            `json:"message"`
}

// Report is one snapshot of the busiest workers and what they are running.
type Report struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Deployment  string          `json:"deployment"`
	Target      string          `json:"target"`
	TopN        int             `json:"top_n"`
	TopWorkers  []WorkerVital   `json:"top_workers"`
	Sections    []WorkerSection `json:"sections,omitempty"`
	Termination *Termination    `json:"termination,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// Section returns the section for an instance, if present.
func (r *Report) Section(instance string) (*WorkerSection, bool) {
	for i := range r.Sections {
		if r.Sections[i].Instance == instance {
			return &r.Sections[i], true
		}
	}
	return nil, false
}
