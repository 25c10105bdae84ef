package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/earnview/portfolio/internal/portfolio"
)

// PortfolioService defines the view derivation interface.
type PortfolioService interface {
	Refresh(ctx context.Context, account string) (portfolio.View, error)
}

// Service manages snapshot generation and retrieval.
type Service struct {
	portfolio PortfolioService
	repo      Repository
}

// NewService creates a snapshot Service.
func NewService(portfolioSvc PortfolioService, repo Repository) *Service {
	if portfolioSvc == nil {
		panic("snapshot.NewService: portfolio service is nil")
	}
	if repo == nil {
		panic("snapshot.NewService: repository is nil")
	}
	return &Service{portfolio: portfolioSvc, repo: repo}
}

// Generate derives a fresh portfolio view for the account and stores it
// under the given date.
func (s *Service) Generate(ctx context.Context, account string, date time.Time) (portfolio.View, error) {
	accountID, err := s.repo.GetAccountID(ctx, account)
	if err != nil {
		return portfolio.View{}, fmt.Errorf("getting account: %w", err)
	}

	view, err := s.portfolio.Refresh(ctx, account)
	if err != nil {
		return portfolio.View{}, fmt.Errorf("deriving portfolio view: %w", err)
	}

	data, err := json.Marshal(view)
	if err != nil {
		return portfolio.View{}, fmt.Errorf("marshaling portfolio view: %w", err)
	}

	if err := s.repo.Save(ctx, accountID, date, data); err != nil {
		return portfolio.View{}, fmt.Errorf("saving snapshot: %w", err)
	}

	return view, nil
}

// GetLatest retrieves the most recent snapshot for the account.
func (s *Service) GetLatest(ctx context.Context, account string) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, account)
}

// GetByDate retrieves a snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, account string, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, account, date)
}

// List retrieves recent snapshots.
func (s *Service) List(ctx context.Context, account string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, account, limit)
}
