package in

import (
	"context"

	"activitylog/internal/modules/activity/dto"
)

type Usecase interface {
	GetOrCreate(ctx context.Context, name string) (dto.ActivityOutput, error)
	List(ctx context.Context) ([]string, error)
	Seed(ctx context.Context, names []string) error
	// DefaultActivity is the first listed name other than Custom.
	DefaultActivity(ctx context.Context) (string, error)
}
