package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/activity/domain"
	activityout "activitylog/internal/modules/activity/port/out"
	apperrors "activitylog/internal/platform/errors"
	"activitylog/internal/platform/logging"
	"activitylog/internal/platform/tx"
)

type RegistryService struct {
	store  activityout.ActivityStore
	tx     tx.Manager
	logger zerolog.Logger
}

func NewRegistryService(store activityout.ActivityStore, txm tx.Manager, logger zerolog.Logger) *RegistryService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &RegistryService{store: store, tx: txm, logger: logger}
}

// GetOrCreate joins the caller's transaction when ctx carries one.
func (s *RegistryService) GetOrCreate(ctx context.Context, name string) (domain.Activity, error) {
	normalized, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Activity{}, err
	}
	var activity domain.Activity
	err = s.tx.Within(ctx, func(ctx context.Context) error {
		found, err := s.store.FindByName(ctx, normalized)
		if err == nil {
			activity = found
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		created, err := s.store.InsertIfAbsent(ctx, normalized)
		if err != nil {
			return err
		}
		found, err = s.store.FindByName(ctx, normalized)
		if err != nil {
			return fmt.Errorf("reload activity %q: %w", normalized, err)
		}
		if created {
			s.logger.Info().Str(logging.KeyActivity, found.Name).Int64("activity_id", found.ID).Msg("activity created")
		}
		activity = found
		return nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (s *RegistryService) List(ctx context.Context) ([]string, error) {
	activities, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SortNames(activities), nil
}

// Seed registers names plus the Custom picker entry in one transaction.
func (s *RegistryService) Seed(ctx context.Context, names []string) error {
	all := append(append([]string(nil), names...), domain.CustomName)
	return s.tx.Within(ctx, func(ctx context.Context) error {
		for _, name := range all {
			if _, err := s.GetOrCreate(ctx, name); err != nil {
				return fmt.Errorf("seed activity %q: %w", name, err)
			}
		}
		return nil
	})
}
