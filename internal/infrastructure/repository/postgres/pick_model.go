package postgres

import (
	"database/sql"
	"time"

	"github.com/thecommish/pickem/internal/domain/pick"
)

type pickTableModel struct {
	UserID         string         `db:"user_id"`
	WeekNumber     int            `db:"week_number"`
	SelectedTeam   string         `db:"selected_team"`
	UserName       string         `db:"user_name"`
	SelectionTime  time.Time      `db:"selection_time"`
	ExternalGameID sql.NullString `db:"external_game_id"`
	Outcome        sql.NullBool   `db:"outcome"`
}

func (m pickTableModel) toDomain() pick.Pick {
	out := pick.Pick{
		UserID:        m.UserID,
		WeekNumber:    m.WeekNumber,
		SelectedTeam:  m.SelectedTeam,
		UserName:      m.UserName,
		SelectionTime: m.SelectionTime,
	}
	if m.ExternalGameID.Valid {
		gameID := m.ExternalGameID.String
		out.GameID = &gameID
	}
	if m.Outcome.Valid {
		outcome := m.Outcome.Bool
		out.Outcome = &outcome
	}
	return out
}

func pickModelFromDomain(p pick.Pick) pickTableModel {
	m := pickTableModel{
		UserID:        p.UserID,
		WeekNumber:    p.WeekNumber,
		SelectedTeam:  p.SelectedTeam,
		UserName:      p.UserName,
		SelectionTime: p.SelectionTime,
	}
	if p.GameID != nil {
		m.ExternalGameID = sql.NullString{String: *p.GameID, Valid: true}
	}
	if p.Outcome != nil {
		m.Outcome = sql.NullBool{Bool: *p.Outcome, Valid: true}
	}
	return m
}
