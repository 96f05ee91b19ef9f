package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/thecommish/pickem/internal/domain/pick"
)

// PickRepository stores picks in the picks table, keyed by
// (user_id, week_number). Put is an upsert: resubmissions before kickoff
// and settlement updates both go through the same last-write-wins path.
type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) Get(ctx context.Context, userID string, week int) (pick.Pick, bool, error) {
	const query = `
		SELECT user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome
		FROM picks
		WHERE user_id = $1 AND week_number = $2`

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, userID, week); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("select pick: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PickRepository) ListBefore(ctx context.Context, userID string, week int) ([]pick.Pick, error) {
	const query = `
		SELECT user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome
		FROM picks
		WHERE user_id = $1 AND week_number < $2
		ORDER BY week_number`

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, userID, week); err != nil {
		return nil, fmt.Errorf("select picks before week: %w", err)
	}
	return toDomainPicks(rows), nil
}

func (r *PickRepository) ListByWeek(ctx context.Context, week int) ([]pick.Pick, error) {
	const query = `
		SELECT user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome
		FROM picks
		WHERE week_number = $1
		ORDER BY user_id`

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, week); err != nil {
		return nil, fmt.Errorf("select picks by week: %w", err)
	}
	return toDomainPicks(rows), nil
}

func (r *PickRepository) ListUnresolved(ctx context.Context) ([]pick.Pick, error) {
	const query = `
		SELECT user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome
		FROM picks
		WHERE outcome IS NULL
		ORDER BY user_id, week_number`

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select unresolved picks: %w", err)
	}
	return toDomainPicks(rows), nil
}

func (r *PickRepository) ListAll(ctx context.Context) ([]pick.Pick, error) {
	const query = `
		SELECT user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome
		FROM picks
		ORDER BY user_id, week_number`

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select all picks: %w", err)
	}
	return toDomainPicks(rows), nil
}

func (r *PickRepository) Put(ctx context.Context, p pick.Pick) error {
	const query = `
		INSERT INTO picks (user_id, week_number, selected_team, user_name, selection_time, external_game_id, outcome)
		VALUES (:user_id, :week_number, :selected_team, :user_name, :selection_time, :external_game_id, :outcome)
		ON CONFLICT (user_id, week_number) DO UPDATE SET
			selected_team = EXCLUDED.selected_team,
			user_name = EXCLUDED.user_name,
			selection_time = EXCLUDED.selection_time,
			external_game_id = EXCLUDED.external_game_id,
			outcome = EXCLUDED.outcome`

	if _, err := r.db.NamedExecContext(ctx, query, pickModelFromDomain(p)); err != nil {
		return fmt.Errorf("upsert pick: %w", err)
	}
	return nil
}

func toDomainPicks(rows []pickTableModel) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
