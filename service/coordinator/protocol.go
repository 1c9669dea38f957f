package coordinator

import (
	"github.com/cellrun/cellrun/model/job"
	"github.com/cellrun/cellrun/service/results"
)

// Assignment is one worker's instruction for a round. A nil Job means the
// worker idles this round but must still meet the others at the barrier.
type Assignment struct {
	Round int      `json:"round"`
	Job   *job.Job `json:"job,omitempty"`
}

// Result is a round-tagged parcel sent from a remote worker back to the
// coordinator. The coordinator merges parcels from any worker in any order
// within a round.
type Result struct {
	Round  int             `json:"round"`
	Worker int             `json:"worker"`
	Parcel *results.Parcel `json:"parcel"`
}
