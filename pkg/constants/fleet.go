package constants

// Source vocabulary that drives filtering
const (
	WorkerInstancePrefix  = "worker"  // bosh instance group of Concourse workers
	ContainerTypeTask     = "task"    // fly container type consuming worker cpu
	ContainerStateCreated = "created" // fly container state of a live container
	BuildStatusStarted    = "started" // fly build status of a running build
)

// Normalization defaults
const (
	NoID             int64 = -1        // job_id / build_id when the container has none
	UnknownBuildName       = "Unknown" // build_name when the container has none
)

// Ranking and matching defaults
const (
	DefaultTopN          = 10
	DefaultShortIDLength = 8
)

// JobNameSource selects which side of the join owns job_name
type JobNameSource string

const (
	JobNameFromBuild     JobNameSource = "build"
	JobNameFromContainer JobNameSource = "container"
)

func (s JobNameSource) String() string {
	return string(s)
}

// Valid reports whether s is a known source
func (s JobNameSource) Valid() bool {
	return s == JobNameFromBuild || s == JobNameFromContainer
}
