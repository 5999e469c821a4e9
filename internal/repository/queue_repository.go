package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// QueueRepo provides methods to work with waitlist entries.
type QueueRepo struct {
	db *sql.DB
}

// NewQueueRepo constructs a QueueRepo with the given DB handle.
func NewQueueRepo(db *sql.DB) *QueueRepo {
	return &QueueRepo{db: db}
}

const queueColumns = `id, lab_id, student_name, purpose, batch_preference, status, created_at`

func scanQueueEntry(s scanner) (*model.QueueEntry, error) {
	var q model.QueueEntry
	var pref, status string
	if err := s.Scan(&q.ID, &q.LabID, &q.StudentName, &q.Purpose, &pref, &status, &q.CreatedAt); err != nil {
		return nil, err
	}
	q.BatchPreference = model.TimeSlot(pref)
	q.Status = model.QueueStatus(status)
	return &q, nil
}

// CreateQueueEntry inserts a waitlist entry.
func (r *QueueRepo) CreateQueueEntry(ctx context.Context, q *model.QueueEntry) error {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM laboratories WHERE id = ?`, q.LabID).Scan(&exists); err != nil {
		return classify("addToQueue", "lab", err)
	}
	if exists == 0 {
		return apperr.NotFound("addToQueue", "lab", q.LabID)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	const stmt = `INSERT INTO queue_entries (lab_id, student_name, purpose, batch_preference, status, created_at)
	              VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt, q.LabID, q.StudentName, q.Purpose, string(q.BatchPreference),
		string(q.Status), q.CreatedAt)
	if err != nil {
		return classify("addToQueue", "queue_entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("addToQueue", "queue_entry", err)
	}
	q.ID = uint64(id)
	return nil
}

// GetQueueEntry retrieves an entry by id.
func (r *QueueRepo) GetQueueEntry(ctx context.Context, id uint64) (*model.QueueEntry, error) {
	q, err := scanQueueEntry(r.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM queue_entries WHERE id = ?`, id))
	if err != nil {
		return nil, classify("getQueueEntry", "queue_entry", err)
	}
	return q, nil
}

// ListQueueEntries returns every entry of the lab, newest first.
func (r *QueueRepo) ListQueueEntries(ctx context.Context, labID uint64) ([]model.QueueEntry, error) {
	const q = `SELECT ` + queueColumns + ` FROM queue_entries WHERE lab_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, labID)
	if err != nil {
		return nil, classify("listQueue", "queue_entry", err)
	}
	defer rows.Close()

	out := []model.QueueEntry{}
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, classify("listQueue", "queue_entry", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("listQueue", "queue_entry", err)
	}
	return out, nil
}

// SetQueueStatus overwrites the advisory status of an entry.
func (r *QueueRepo) SetQueueStatus(ctx context.Context, id uint64, s model.QueueStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE queue_entries SET status = ? WHERE id = ?`, string(s), id)
	if err != nil {
		return classify("setQueueStatus", "queue_entry", err)
	}
	if !affectedOne(res) {
		if _, err := r.GetQueueEntry(ctx, id); err != nil {
			return apperr.WithOp("setQueueStatus", err)
		}
	}
	return nil
}
