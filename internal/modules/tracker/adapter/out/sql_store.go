package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"activitylog/internal/modules/tracker/domain"
	"activitylog/internal/platform/database"
	apperrors "activitylog/internal/platform/errors"
)

const sessionColumns = `s.id, s.activity_id, a.name, s.start_ts, s.end_ts, s.duration_sec`

// SQLStore persists sessions and daily totals. Timestamps are written and read
// as wall-clock text in loc.
type SQLStore struct {
	db  *database.DB
	loc *time.Location
}

func NewSQLStore(db *database.DB, loc *time.Location) *SQLStore {
	if loc == nil {
		loc = time.Local
	}
	return &SQLStore{db: db, loc: loc}
}

func (s *SQLStore) Open(ctx context.Context, activityID int64, start time.Time) (int64, error) {
	ts := domain.FormatTimestamp(start.In(s.loc))
	var id int64
	err := s.db.Conn(ctx).QueryRowContext(ctx,
		s.db.Rebind(`INSERT INTO sessions(activity_id, start_ts, end_ts, duration_sec) VALUES (?, ?, ?, 0) RETURNING id`),
		activityID, ts, ts,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (s *SQLStore) Update(ctx context.Context, id int64, end time.Time, durationSec float64) error {
	res, err := s.db.Conn(ctx).ExecContext(ctx,
		s.db.Rebind(`UPDATE sessions SET end_ts = ?, duration_sec = ? WHERE id = ?`),
		domain.FormatTimestamp(end.In(s.loc)), durationSec, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s JOIN activities a ON a.id = s.activity_id ORDER BY s.start_ts DESC, s.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.querySessions(ctx, query, args...)
}

func (s *SQLStore) ListForDate(ctx context.Context, date time.Time) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s JOIN activities a ON a.id = s.activity_id WHERE s.start_ts LIKE ? ORDER BY s.start_ts, s.id`
	return s.querySessions(ctx, query, domain.DateKey(date)+"%")
}

func (s *SQLStore) TotalsByActivity(ctx context.Context) ([]domain.DailyTotal, error) {
	rows, err := s.db.Conn(ctx).QueryContext(ctx, `SELECT a.id, a.name, SUM(s.duration_sec) FROM sessions s JOIN activities a ON a.id = s.activity_id GROUP BY a.id, a.name ORDER BY lower(a.name), a.id`)
	if err != nil {
		return nil, fmt.Errorf("sum sessions: %w", err)
	}
	defer rows.Close()
	return scanTotals(rows, "")
}

func (s *SQLStore) Credit(ctx context.Context, date time.Time, activityID int64, seconds float64) error {
	_, err := s.db.Conn(ctx).ExecContext(ctx,
		s.db.Rebind(`INSERT INTO daily_totals(date, activity_id, seconds) VALUES (?, ?, ?)
ON CONFLICT(date, activity_id) DO UPDATE SET seconds = daily_totals.seconds + excluded.seconds`),
		domain.DateKey(date.In(s.loc)), activityID, seconds,
	)
	if err != nil {
		return fmt.Errorf("upsert daily total: %w", err)
	}
	return nil
}

func (s *SQLStore) ForDate(ctx context.Context, date time.Time) ([]domain.DailyTotal, error) {
	key := domain.DateKey(date)
	rows, err := s.db.Conn(ctx).QueryContext(ctx,
		s.db.Rebind(`SELECT a.id, a.name, dt.seconds FROM daily_totals dt JOIN activities a ON a.id = dt.activity_id WHERE dt.date = ? ORDER BY lower(a.name), a.id`),
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()
	return scanTotals(rows, key)
}

func (s *SQLStore) querySessions(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.Conn(ctx).QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		var (
			sess       domain.Session
			start, end string
		)
		if err := rows.Scan(&sess.ID, &sess.ActivityID, &sess.ActivityName, &start, &end, &sess.DurationSec); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Start, err = domain.ParseTimestamp(start, s.loc); err != nil {
			return nil, fmt.Errorf("session %d start: %w", sess.ID, err)
		}
		if sess.End, err = domain.ParseTimestamp(end, s.loc); err != nil {
			return nil, fmt.Errorf("session %d end: %w", sess.ID, err)
		}
		sess.End = resolveEnd(sess, end)
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// resolveEnd picks the end instant for a row whose wall-clock text is
// ambiguous after a DST fall-back. The stored duration decides which of the
// repeated hour's instants the text meant.
func resolveEnd(sess domain.Session, text string) time.Time {
	implied := sess.Start.Add(time.Duration(sess.DurationSec * float64(time.Second)).Round(time.Second))
	if domain.FormatTimestamp(implied) == text {
		return implied
	}
	if sess.End.Before(sess.Start) {
		return sess.Start
	}
	return sess.End
}

func scanTotals(rows *sql.Rows, date string) ([]domain.DailyTotal, error) {
	out := []domain.DailyTotal{}
	for rows.Next() {
		t := domain.DailyTotal{Date: date}
		if err := rows.Scan(&t.ActivityID, &t.ActivityName, &t.Seconds); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate totals: %w", err)
	}
	return out, nil
}
