package out

import (
	"context"

	"activitylog/internal/modules/activity/domain"
)

type ActivityStore interface {
	// FindByName matches case-insensitively and returns apperrors.ErrNotFound when absent.
	FindByName(ctx context.Context, name string) (domain.Activity, error)
	// InsertIfAbsent reports whether a new row was created.
	InsertIfAbsent(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]domain.Activity, error)
}
