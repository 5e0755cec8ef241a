package warehouse

import (
	"context"

	"stockledger/internal/core/security"
)

// Service provides read access to warehouses.
type Service struct {
	repo Repository
}

// NewService creates a new warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the warehouses visible to the caller: all for admin, the bound one for staff.
func (s *Service) List(ctx context.Context, caller security.CallerContext) ([]Warehouse, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return all, nil
	}
	out := make([]Warehouse, 0, 1)
	for _, w := range all {
		if w.ID == caller.AssignedWarehouse {
			out = append(out, w)
		}
	}
	return out, nil
}
