package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"time"         // created_at is written from Go for dialect portability

	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// LabRepo reads laboratories.  Labs are administered elsewhere; Create
// exists so that the seed command and tests can populate a store.
type LabRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewLabRepo constructs a LabRepo with the given DB handle.
func NewLabRepo(db *sql.DB) *LabRepo {
	return &LabRepo{db: db}
}

// CreateLab inserts a lab and populates its ID and CreatedAt.
func (r *LabRepo) CreateLab(ctx context.Context, l *model.Laboratory) error {
	const q = `INSERT INTO laboratories (name, created_at) VALUES (?, ?)`
	l.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, q, l.Name, l.CreatedAt)
	if err != nil {
		return classify("createLab", "lab", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("createLab", "lab", err)
	}
	l.ID = uint64(id)
	return nil
}

// GetLab retrieves a lab by id.
func (r *LabRepo) GetLab(ctx context.Context, id uint64) (*model.Laboratory, error) {
	const q = `SELECT id, name, created_at FROM laboratories WHERE id = ?`
	var l model.Laboratory
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
		return nil, classify("getLab", "lab", err)
	}
	return &l, nil
}

// ListLabs returns every lab ordered by id.
func (r *LabRepo) ListLabs(ctx context.Context) ([]model.Laboratory, error) {
	const q = `SELECT id, name, created_at FROM laboratories ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify("listLabs", "lab", err)
	}
	defer rows.Close()

	out := []model.Laboratory{}
	for rows.Next() {
		var l model.Laboratory
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, classify("listLabs", "lab", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listLabs", "lab", err)
	}
	return out, nil
}
