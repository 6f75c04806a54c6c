package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

// ResolverService maps a target identifier of unknown kind to exactly one
// concrete publishing account. Callers commonly pass a business profile id
// where an account id is expected; the indirection is resolved here so the
// rest of the pipeline only ever sees concrete accounts.
type ResolverService interface {
	Resolve(ctx context.Context, targetID int64) (*models.Account, error)
}

type resolverService struct {
	ac repository.AccountRepository
	bp repository.ProfileRepository
}

func NewResolverService(ac repository.AccountRepository, bp repository.ProfileRepository) ResolverService {
	return &resolverService{
		ac: ac,
		bp: bp,
	}
}

func (s *resolverService) Resolve(ctx context.Context, targetID int64) (*models.Account, error) {
	account, err := s.ac.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	profile, err := s.bp.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("target %d: %w", targetID, ErrNotFound)
	}

	accounts, err := s.ac.ListByProfileID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		err = fmt.Errorf("profile %q has no linked accounts: %w", profile.Name, ErrNotFound)
		slog.Info(err.Error())
		return nil, err
	}

	// First linked account wins, in storage listing order. Documented
	// behavior, not a heuristic.
	return accounts[0], nil
}
