package model

// WorkerVital is one fleet instance with its cpu vitals.
// CPUTotal is derived on every ranking pass and is never read from the source.
type WorkerVital struct {
	Instance string  `json:"instance"`
	CPUSys   float64 `json:"cpu_sys"`
	CPUUser  float64 `json:"cpu_user"`
	CPUWait  float64 `json:"cpu_wait"`
	CPUTotal float64 `json:"cpu_total"`
}
