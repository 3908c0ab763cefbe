package repository

import (
	"context"
	"fmt"
	"time"

	"trainops_backend/internal/enquiries/domain"
	"trainops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const opListActivities = "enquiries.repository.list_activities"

// Activity is an immutable audit entry on an enquiry. Rows are only
// ever inserted by this subsystem, never updated or deleted.
type Activity struct {
	ID             uuid.UUID           `json:"id"`
	EnquiryID      uuid.UUID           `json:"enquiryId"`
	Type           domain.ActivityType `json:"type"`
	Title          string              `json:"title"`
	Description    *string             `json:"description,omitempty"`
	PreviousStatus domain.Status       `json:"previousStatus"`
	NewStatus      domain.Status       `json:"newStatus"`
	CreatedBy      uuid.UUID           `json:"createdBy"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type activityInsert struct {
	EnquiryID      uuid.UUID
	Type           domain.ActivityType
	Title          string
	Description    *string
	PreviousStatus domain.Status
	NewStatus      domain.Status
	CreatedBy      uuid.UUID
}

// insertActivityTx appends the audit entry inside the caller's
// transaction so the status write and its activity commit together.
func insertActivityTx(ctx context.Context, tx pgx.Tx, params activityInsert) (Activity, error) {
	var a Activity
	err := tx.QueryRow(ctx, `
		INSERT INTO enquiry_activities
			(enquiry_id, type, title, description, previous_status, new_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, enquiry_id, type, title, description, previous_status, new_status, created_by, created_at
	`, params.EnquiryID, params.Type, params.Title, params.Description,
		params.PreviousStatus, params.NewStatus, params.CreatedBy,
	).Scan(&a.ID, &a.EnquiryID, &a.Type, &a.Title, &a.Description,
		&a.PreviousStatus, &a.NewStatus, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (r *pgxRepository) ListActivities(ctx context.Context, enquiryID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, enquiry_id, type, title, description, previous_status, new_status, created_by, created_at
		FROM enquiry_activities
		WHERE enquiry_id = $1
		ORDER BY created_at DESC
	`, enquiryID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("list activities failed: %v", err), err).WithOp(opListActivities)
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if scanErr := rows.Scan(&a.ID, &a.EnquiryID, &a.Type, &a.Title, &a.Description,
			&a.PreviousStatus, &a.NewStatus, &a.CreatedBy, &a.CreatedAt); scanErr != nil {
			return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("scan activity failed: %v", scanErr), scanErr).WithOp(opListActivities)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
