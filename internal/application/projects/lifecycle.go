package projects

import "sunshare-backend/internal/domain"

// transitions is the project lifecycle graph. Soft delete forces RETIRED outside this graph.
var transitions = map[string][]string{
	domain.ProjectDraft:       {domain.ProjectActive},
	domain.ProjectActive:      {domain.ProjectMaintenance, domain.ProjectRetired},
	domain.ProjectMaintenance: {domain.ProjectActive, domain.ProjectRetired},
	domain.ProjectRetired:     {domain.ProjectDraft},
}

// CanTransition reports whether a project may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return domain.IsValidProjectStatus(to)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
