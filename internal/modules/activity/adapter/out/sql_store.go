package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"activitylog/internal/modules/activity/domain"
	"activitylog/internal/platform/database"
	apperrors "activitylog/internal/platform/errors"
)

type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FindByName(ctx context.Context, name string) (domain.Activity, error) {
	var a domain.Activity
	row := s.db.Conn(ctx).QueryRowContext(ctx, s.db.Rebind(`SELECT id, name FROM activities WHERE lower(name) = lower(?) ORDER BY id LIMIT 1`), name)
	if err := row.Scan(&a.ID, &a.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, fmt.Errorf("activity %q: %w", name, apperrors.ErrNotFound)
		}
		return domain.Activity{}, fmt.Errorf("find activity: %w", err)
	}
	return a, nil
}

func (s *SQLStore) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	res, err := s.db.Conn(ctx).ExecContext(ctx, s.db.Rebind(`INSERT INTO activities(name) VALUES (?) ON CONFLICT DO NOTHING`), name)
	if err != nil {
		return false, fmt.Errorf("insert activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert activity: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.db.Conn(ctx).QueryContext(ctx, `SELECT id, name FROM activities ORDER BY lower(name), id`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}
