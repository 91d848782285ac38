package roster

import (
	"context"
	"database/sql"
	"errors"
)

// Student is a registered roster entry. The id is the external identifier
// encoded in the student's QR code. The roster is written by upload only
// and read-only during marking.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store reads and uploads the registered student list.
type Store struct {
	db *sql.DB
}

// NewStore creates a roster store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// All returns every registered student ordered by id.
func (s *Store) All(ctx context.Context) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, name
		FROM students
		ORDER BY student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Find returns a single student by id, or nil when not registered.
func (s *Store) Find(ctx context.Context, id string) (*Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT student_id, name
		FROM students WHERE student_id = $1
	`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// Upsert creates or renames a roster entry.
func (s *Store) Upsert(ctx context.Context, st Student) error {
	if st.ID == "" {
		return errors.New("student id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (student_id, name)
		VALUES ($1, $2)
		ON CONFLICT (student_id) DO UPDATE SET name = EXCLUDED.name
	`, st.ID, st.Name)
	return err
}
