package attribution

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"workerscope/internal/model"
	"workerscope/pkg/constants"
)

// RankWorkers returns the topN worker instances by cpu_total, descending.
// Rows outside the worker instance group are dropped before parsing. Equal
// totals keep their input order. topN <= 0 uses the default of 10.
func RankWorkers(rows []model.Record, topN int) ([]model.WorkerVital, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: vitals source returned no rows", ErrDataUnavailable)
	}
	if topN <= 0 {
		topN = constants.DefaultTopN
	}

	workers := make([]model.WorkerVital, 0, len(rows))
	for i, row := range rows {
		instance, _ := VitalSchema.String(row, "instance")
		if !strings.HasPrefix(instance, constants.WorkerInstancePrefix) {
			continue
		}
		vital, err := parseVital(instance, row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDataUnavailable, i, err)
		}
		workers = append(workers, vital)
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: no %q instances in vitals", ErrDataUnavailable, constants.WorkerInstancePrefix)
	}

	sort.SliceStable(workers, func(i, j int) bool {
		return workers[i].CPUTotal > workers[j].CPUTotal
	})
	if len(workers) > topN {
		workers = workers[:topN]
	}
	return workers, nil
}

func parseVital(instance string, row model.Record) (model.WorkerVital, error) {
	if missing := VitalSchema.Missing(row); len(missing) > 0 {
		return model.WorkerVital{}, fmt.Errorf("instance %s is missing %s", instance, strings.Join(missing, ", "))
	}

	var values [3]float64
	for i, field := range []string{"cpu_sys", "cpu_user", "cpu_wait"} {
		raw, _ := VitalSchema.String(row, field)
		v, err := ParsePercent(raw)
		if err != nil {
			return model.WorkerVital{}, fmt.Errorf("instance %s field %s: %v", instance, field, err)
		}
		values[i] = v
	}

	return model.WorkerVital{
		Instance: instance,
		CPUSys:   values[0],
		CPUUser:  values[1],
		CPUWait:  values[2],
		CPUTotal: values[0] + values[1] + values[2],
	}, nil
}

// ParsePercent parses a bosh percentage such as "12.3%". NaN and infinities
// are rejected.
func ParsePercent(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	if trimmed == "" {
		return 0, fmt.Errorf("empty percentage %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite percentage %q", s)
	}
	return v, nil
}
