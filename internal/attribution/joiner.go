package attribution

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"workerscope/internal/model"
	"workerscope/pkg/constants"
)

// Options controls how workers are matched and joined.
type Options struct {
	ShortIDLength  int
	JobNameSource  constants.JobNameSource
	StrictShortIDs bool
}

// DefaultOptions returns 8-character short ids with build-side job names.
func DefaultOptions() Options {
	return Options{
		ShortIDLength: constants.DefaultShortIDLength,
		JobNameSource: constants.JobNameFromBuild,
	}
}

func (o Options) withDefaults() Options {
	if o.ShortIDLength <= 0 {
		o.ShortIDLength = constants.DefaultShortIDLength
	}
	if !o.JobNameSource.Valid() {
		o.JobNameSource = constants.JobNameFromBuild
	}
	return o
}

// Collision is a short id derived by more than one ranked worker.
type Collision struct {
	ShortID   string
	Instances []string
}

func (c Collision) String() string {
	return fmt.Sprintf("short id %s is shared by %s", c.ShortID, strings.Join(c.Instances, ", "))
}

// ShortID derives the fly worker name prefix from a bosh instance.
// "worker/abcdef1234567/extra" yields "abcdef12".
func ShortID(instance string, length int) (string, error) {
	parts := strings.Split(instance, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %q has no id component", ErrMalformedInstanceID, instance)
	}
	if length <= 0 {
		length = constants.DefaultShortIDLength
	}
	id := []rune(parts[1])
	if len(id) > length {
		id = id[:length]
	}
	return string(id), nil
}

// Attribute builds one section per worker, in the given order. Only
// containers that were normalized and builds that were selected should be passed.
func Attribute(workers []model.WorkerVital, containers []model.Container, builds []model.Build, opts Options) ([]model.WorkerSection, []Collision) {
	opts = opts.withDefaults()

	shortIDs := make([]string, len(workers))
	idErrs := make([]error, len(workers))
	owners := make(map[string][]string)
	for i, w := range workers {
		shortIDs[i], idErrs[i] = ShortID(w.Instance, opts.ShortIDLength)
		if idErrs[i] == nil {
			owners[shortIDs[i]] = append(owners[shortIDs[i]], w.Instance)
		}
	}
	collisions := findCollisions(workers, shortIDs, owners)

	sections := make([]model.WorkerSection, 0, len(workers))
	for i, w := range workers {
		section := model.WorkerSection{
			Instance: w.Instance,
			ShortID:  shortIDs[i],
			CPUTotal: w.CPUTotal,
		}

		err := idErrs[i]
		if err == nil && opts.StrictShortIDs && len(owners[shortIDs[i]]) > 1 {
			err = fmt.Errorf("%w: %s", ErrShortIDCollision, Collision{ShortID: shortIDs[i], Instances: owners[shortIDs[i]]})
		}
		if err == nil {
			err = joinWorker(&section, containers, builds, opts)
		}
		if err != nil {
			section.Outcome = model.OutcomeError
			section.Records = nil
			section.Error = &model.SectionError{Kind: ErrorKind(err), Message: err.Error()}
		}
		sections = append(sections, section)
	}
	return sections, collisions
}

func findCollisions(workers []model.WorkerVital, shortIDs []string, owners map[string][]string) []Collision {
	var collisions []Collision
	seen := make(map[string]bool)
	for i := range workers {
		id := shortIDs[i]
		if id == "" || seen[id] || len(owners[id]) < 2 {
			continue
		}
		seen[id] = true
		collisions = append(collisions, Collision{ShortID: id, Instances: owners[id]})
	}
	return collisions
}

func joinWorker(section *model.WorkerSection, containers []model.Container, builds []model.Build, opts Options) error {
	var matched []model.Container
	for _, c := range containers {
		if strings.HasPrefix(c.WorkerName, section.ShortID) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		section.Outcome = model.OutcomeNoContainers
		return nil
	}

	ids := make(map[int64]bool)
	for _, c := range matched {
		if c.BuildID != constants.NoID {
			ids[c.BuildID] = true
		}
	}
	var active []model.Build
	for _, b := range builds {
		if ids[b.BuildID] {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		section.Outcome = model.OutcomeNoActiveBuilds
		return nil
	}

	records, err := joinRecords(active, matched, opts.JobNameSource)
	if err != nil {
		return err
	}
	section.Outcome = model.OutcomeAttributed
	section.Records = records
	return nil
}

// joinRecords left-joins builds to containers on build_id. Each matching
// container contributes one record; builds keep their order, containers theirs.
func joinRecords(builds []model.Build, containers []model.Container, source constants.JobNameSource) ([]model.AttributedBuildRecord, error) {
	byBuild := make(map[int64][]model.Container)
	for _, c := range containers {
		byBuild[c.BuildID] = append(byBuild[c.BuildID], c)
	}

	missing := make(map[string]bool)
	var records []model.AttributedBuildRecord
	for _, b := range builds {
		for _, col := range b.Missing {
			if col != "job_name" {
				missing[col] = true
			}
		}
		for _, c := range byBuild[b.BuildID] {
			for _, col := range c.Missing {
				if col != "job_name" {
					missing[col] = true
				}
			}
			jobName, ok := resolveJobName(b, c, source)
			if !ok {
				missing["job_name"] = true
			}
			records = append(records, model.AttributedBuildRecord{
				TeamName:     b.TeamName,
				PipelineName: b.PipelineName,
				JobName:      jobName,
				StepName:     c.StepName,
				BuildNumber:  c.BuildName,
				Status:       b.Status,
				BuildID:      b.BuildID,
			})
		}
	}

	if len(missing) > 0 {
		cols := make([]string, 0, len(missing))
		for col := range missing {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		return nil, fmt.Errorf("%w: joined rows lack %s", ErrJoinColumnMismatch, strings.Join(cols, ", "))
	}
	return records, nil
}

// resolveJobName takes job_name from the authoritative side, falling back to
// the other side when it is absent there.
func resolveJobName(b model.Build, c model.Container, source constants.JobNameSource) (string, bool) {
	buildHas := !slices.Contains(b.Missing, "job_name")
	containerHas := !slices.Contains(c.Missing, "job_name")

	first, second := b.JobName, c.JobName
	firstHas, secondHas := buildHas, containerHas
	if source == constants.JobNameFromContainer {
		first, second = second, first
		firstHas, secondHas = secondHas, firstHas
	}
	switch {
	case firstHas && first != "":
		return first, true
	case secondHas && second != "":
		return second, true
	case firstHas:
		return first, true
	case secondHas:
		return second, true
	default:
		return "", false
	}
}
