// Package capacity derives allocated/available/utilization figures from a project's blocks.
package capacity

import (
	"math"

	"sunshare-backend/internal/domain"

	"github.com/google/uuid"
)

// Aggregate is recomputed on every read and never persisted.
type Aggregate struct {
	Allocated   float64 `json:"allocated"`
	Available   float64 `json:"available"`
	Utilization int     `json:"utilization"`
}

// Compute sums the blocks of one project. Blocks with a non-positive kW or an unknown status
// contribute nothing. Utilization is a rounded percentage of totalKw and is not clamped, so
// over-allocation shows up as a value above 100.
func Compute(blocks []domain.CapacityBlock, totalKw float64) Aggregate {
	var agg Aggregate
	for _, b := range blocks {
		if !(b.Kw > 0) {
			continue
		}
		switch b.Status {
		case domain.BlockAllocated:
			agg.Allocated += b.Kw
		case domain.BlockAvailable:
			agg.Available += b.Kw
		}
	}
	if totalKw > 0 {
		agg.Utilization = int(math.Round(agg.Allocated / totalKw * 100))
	}
	return agg
}

// CanDelete reports whether a project with this aggregate has no allocated capacity.
func CanDelete(agg Aggregate) bool {
	return agg.Allocated == 0
}

// GroupByProject partitions blocks by owning project.
func GroupByProject(blocks []domain.CapacityBlock) map[uuid.UUID][]domain.CapacityBlock {
	out := make(map[uuid.UUID][]domain.CapacityBlock)
	for _, b := range blocks {
		out[b.ProjectID] = append(out[b.ProjectID], b)
	}
	return out
}
