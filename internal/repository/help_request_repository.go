package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/relief-service/internal/domain"
)

// HelpRequestRepository encapsulates help request persistence.
type HelpRequestRepository interface {
	Create(ctx context.Context, request *domain.HelpRequest) error
	Update(ctx context.Context, request *domain.HelpRequest) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.HelpRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.HelpRequestListItem, error)
	ListAll(ctx context.Context) ([]domain.HelpRequestListItem, error)
}

type helpRequestRepository struct {
	pool *pgxpool.Pool
}

// NewHelpRequestRepository instantiates repository.
func NewHelpRequestRepository(pool *pgxpool.Pool) HelpRequestRepository {
	return &helpRequestRepository{pool: pool}
}

func (r *helpRequestRepository) Create(ctx context.Context, request *domain.HelpRequest) error {
	const query = `
        INSERT INTO help_requests (owner_account_id, disaster_type, disaster_date, location, affected_persons, priority, description, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		request.OwnerID,
		request.DisasterType,
		request.DisasterDate,
		request.Location,
		request.AffectedPersons,
		request.Priority,
		request.Description,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *helpRequestRepository) Update(ctx context.Context, request *domain.HelpRequest) error {
	const query = `
        UPDATE help_requests SET disaster_type=$1, disaster_date=$2, location=$3, affected_persons=$4,
            priority=$5, description=$6, status=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		request.DisasterType,
		request.DisasterDate,
		request.Location,
		request.AffectedPersons,
		request.Priority,
		request.Description,
		request.Status,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *helpRequestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM help_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *helpRequestRepository) GetByID(ctx context.Context, id string) (*domain.HelpRequest, error) {
	const query = `
        SELECT id, owner_account_id, disaster_type, disaster_date, location, affected_persons, priority, description, status, created_at
        FROM help_requests WHERE id=$1`
	var request domain.HelpRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.OwnerID,
		&request.DisasterType,
		&request.DisasterDate,
		&request.Location,
		&request.AffectedPersons,
		&request.Priority,
		&request.Description,
		&request.Status,
		&request.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

const helpRequestListQuery = `
        SELECT h.id, h.owner_account_id, h.disaster_type, h.disaster_date, h.location, h.affected_persons,
               h.priority, h.description, h.status, h.created_at,
               a.first_name || ' ' || a.last_name AS owner_name
        FROM help_requests h
        JOIN accounts a ON a.id = h.owner_account_id`

func (r *helpRequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.HelpRequestListItem, error) {
	query := helpRequestListQuery + ` WHERE h.owner_account_id=$1 ORDER BY h.created_at DESC, h.id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHelpRequestItems(rows)
}

func (r *helpRequestRepository) ListAll(ctx context.Context) ([]domain.HelpRequestListItem, error) {
	query := helpRequestListQuery + ` ORDER BY h.created_at DESC, h.id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHelpRequestItems(rows)
}

func scanHelpRequestItems(rows pgx.Rows) ([]domain.HelpRequestListItem, error) {
	var result []domain.HelpRequestListItem
	for rows.Next() {
		var item domain.HelpRequestListItem
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.DisasterType,
			&item.DisasterDate,
			&item.Location,
			&item.AffectedPersons,
			&item.Priority,
			&item.Description,
			&item.Status,
			&item.CreatedAt,
			&item.OwnerName,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
