package projects

import "errors"

var (
	ErrProjectNotFound     = errors.New("Project not found")
	ErrMissingFields       = errors.New("spv_id, name, total_kw, rate_per_kwh, location and state are required")
	ErrInvalidTotalKw      = errors.New("total_kw must be at least 0.01")
	ErrInvalidRate         = errors.New("rate_per_kwh must be at least 0.01")
	ErrDuplicateSPV        = errors.New("A project with this spv_id already exists")
	ErrNoValidFields       = errors.New("No valid update fields provided")
	ErrInvalidStatus       = errors.New("Invalid project status")
	ErrInvalidTransition   = errors.New("Invalid project status transition")
	ErrActiveNeedsCapacity = errors.New("An active project must have total_kw greater than zero")
	ErrActiveAllocations   = errors.New("Cannot delete project with active allocations")
	ErrInvalidBlockKw      = errors.New("kw must be at least 0.01")
	ErrProjectNotActive    = errors.New("Project is not accepting reservations")
	ErrInvalidField        = errors.New("Invalid field value")
)
