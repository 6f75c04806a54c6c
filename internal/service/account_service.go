package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

type AccountService interface {
	List(ctx context.Context, userID int64) ([]*models.Account, error)
	ListProfiles(ctx context.Context, userID int64) ([]*models.BusinessProfile, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	ac repository.AccountRepository
	bp repository.ProfileRepository
}

func NewAccountService(ac repository.AccountRepository, bp repository.ProfileRepository) AccountService {
	return &accountService{
		ac: ac,
		bp: bp,
	}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.Account, error) {
	accounts, err := s.ac.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts")
	}
	return accounts, nil
}

func (s *accountService) ListProfiles(ctx context.Context, userID int64) ([]*models.BusinessProfile, error) {
	profiles, err := s.bp.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing business profiles")
	}
	return profiles, nil
}

func (s *accountService) Delete(ctx context.Context, userID, accountID int64) error {
	var err error

	if accountID == 0 {
		err = errors.New("account id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.ac.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = fmt.Errorf("account %d: %w", accountID, ErrNotFound)
		slog.Info(err.Error())
		return err
	}

	err = s.ac.Remove(ctx, accountID)
	if err != nil {
		return err
	}
	return nil
}
