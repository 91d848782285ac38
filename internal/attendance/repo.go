package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Record is one successful attendance mark. Records are append-only and
// partitioned by calendar day; at most one exists per (day, slot, student).
type Record struct {
	ID        string    `json:"id"`
	Day       string    `json:"day"` // YYYY-MM-DD
	SlotLabel string    `json:"slot"`
	StudentID string    `json:"studentId"`
	Name      string    `json:"name"`
	MarkedAt  time.Time `json:"markedAt"`
}

// DayOf formats t as the record day key.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// Repository persists attendance marks in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a mark. The unique constraint on (day, slot_label,
// student_id) makes this an atomic insert-if-absent: two concurrent marks
// for the same student and slot cannot both land, and the loser gets
// ErrDuplicateMark.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_marks (id, day, slot_label, student_id, name, marked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (day, slot_label, student_id) DO NOTHING
	`, rec.ID, rec.Day, rec.SlotLabel, rec.StudentID, rec.Name, rec.MarkedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDuplicateMark
	}
	return nil
}

// ListDay returns all marks for one calendar day in marking order.
func (r *Repository) ListDay(ctx context.Context, day string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, day, slot_label, student_id, name, marked_at
		FROM attendance_marks
		WHERE day = $1
		ORDER BY marked_at
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Day, &rec.SlotLabel, &rec.StudentID, &rec.Name, &rec.MarkedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
