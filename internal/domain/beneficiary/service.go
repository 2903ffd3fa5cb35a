package beneficiary

import (
	"context"

	"github.com/google/uuid"
)

// maxPerAccount caps saved beneficiaries per account
const maxPerAccount = 50

// Service handles beneficiary business logic
type Service struct {
	repo Repository
}

// NewService creates beneficiary service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save stores a new beneficiary for the account
func (s *Service) Save(ctx context.Context, accountID uuid.UUID, req *SaveRequest) (*Beneficiary, error) {
	n, err := s.repo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if n >= maxPerAccount {
		return nil, ErrLimitExceeded
	}

	b := &Beneficiary{
		ID:          uuid.New(),
		AccountID:   accountID,
		Name:        req.Name,
		ServiceType: req.ServiceType,
		Provider:    req.Provider,
		Identifier:  req.Identifier,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the account's beneficiaries, optionally filtered by service type
func (s *Service) List(ctx context.Context, accountID uuid.UUID, serviceType string) ([]*Beneficiary, error) {
	return s.repo.ListByAccount(ctx, accountID, serviceType)
}

// Delete removes one of the account's beneficiaries
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil || b.AccountID != accountID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
