package service

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/identity"
)

type IdentityService struct {
	reconciler *identity.Reconciler
}

func NewIdentityService(reconciler *identity.Reconciler) *IdentityService {
	return &IdentityService{reconciler: reconciler}
}

func (s *IdentityService) Reconcile(ctx context.Context, userID string) (identity.Result, error) {
	result, err := s.reconciler.Reconcile(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return identity.Result{}, NewErrUserNotFound(userID)
		}
		return identity.Result{}, err
	}
	return result, nil
}

func (s *IdentityService) Sync(ctx context.Context, userID, direction string) (identity.Result, error) {
	dir, err := identity.ParseDirection(direction)
	if err != nil {
		return identity.Result{}, NewErrInvalidRequest(err.Error())
	}

	result, err := s.reconciler.Sync(ctx, userID, dir)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return identity.Result{}, NewErrUserNotFound(userID)
		}
		return identity.Result{}, err
	}
	return result, nil
}
