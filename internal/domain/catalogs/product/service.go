package product

import (
	"context"
	"fmt"
	"strings"

	"stockledger/internal/core/numerator"
	"stockledger/internal/core/security"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/audit"
	"stockledger/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	journal   audit.Journal
}

// NewService creates a new product service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager, journal: audit.Nop{}}
}

// WithJournal sets the journal that records deletions.
func (s *Service) WithJournal(j audit.Journal) *Service {
	s.journal = j
	return s
}

// List returns products ordered by id.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// SuggestID returns the next free-looking product code.
func (s *Service) SuggestID(ctx context.Context) (string, error) {
	return s.numerator.Suggest(ctx, numerator.SeriesProduct)
}

// Create adds a product, taking the suggested code when p.ID is empty.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		code, err := s.SuggestID(ctx)
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.ID = code
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "product created", "id", p.ID)
	return nil
}

// Update replaces the descriptive fields of an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes an unreferenced product. Admin only.
func (s *Service) Delete(ctx context.Context, caller security.CallerContext, id string) error {
	if err := caller.RequireAdmin("product delete"); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.journal.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   id,
			Action:     audit.ActionDelete,
			UserID:     caller.UserID,
		})
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "id", id)
	return nil
}
