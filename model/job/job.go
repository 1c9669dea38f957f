package job

import (
	"fmt"
	"strconv"
	"strings"
)

// Job is the atomic unit of simulation work: one replicate (cell) of one
// condition. Cell indices start at 1.
type Job struct {
	ConditionID string `json:"conditionId"`
	Cell        int    `json:"cell"`
}

// New creates a job for the given condition and cell index.
func New(conditionID string, cell int) *Job {
	return &Job{ConditionID: conditionID, Cell: cell}
}

// Key returns the canonical job key "{conditionId}+{cell}".
func (j *Job) Key() string {
	return j.ConditionID + "+" + strconv.Itoa(j.Cell)
}

func (j *Job) String() string {
	return j.Key()
}

// Parse decodes a job key produced by Key.
func Parse(key string) (*Job, error) {
	index := strings.LastIndex(key, "+")
	if index <= 0 || index == len(key)-1 {
		return nil, fmt.Errorf("invalid job key %q", key)
	}
	cell, err := strconv.Atoi(key[index+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid cell index in job key %q: %w", key, err)
	}
	return &Job{ConditionID: key[:index], Cell: cell}, nil
}

// Expand crosses ordered condition IDs with cell indices [1, cellCount],
// preserving condition order.
func Expand(conditionIDs []string, cellCount int) []*Job {
	if cellCount < 1 {
		cellCount = 1
	}
	jobs := make([]*Job, 0, len(conditionIDs)*cellCount)
	for _, id := range conditionIDs {
		for cell := 1; cell <= cellCount; cell++ {
			jobs = append(jobs, New(id, cell))
		}
	}
	return jobs
}
