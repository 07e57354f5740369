package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/relief-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.TicketListItem, error)
	ListAll(ctx context.Context) ([]domain.TicketListItem, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_account_id, subject, description, help_request_id, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Subject,
		ticket.Description,
		ticket.HelpRequestID,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, owner_account_id, subject, description, help_request_id, status, created_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.HelpRequestID,
		&ticket.Status,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

const ticketListQuery = `
        SELECT t.id, t.owner_account_id, t.subject, t.description, t.help_request_id, t.status, t.created_at,
               a.first_name || ' ' || a.last_name AS owner_name,
               (SELECT COUNT(*) FROM replies rp WHERE rp.ticket_id = t.id) AS reply_count
        FROM tickets t
        JOIN accounts a ON a.id = t.owner_account_id`

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.TicketListItem, error) {
	query := ticketListQuery + ` WHERE t.owner_account_id=$1 ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketItems(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.TicketListItem, error) {
	query := ticketListQuery + ` ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketItems(rows)
}

func scanTicketItems(rows pgx.Rows) ([]domain.TicketListItem, error) {
	var result []domain.TicketListItem
	for rows.Next() {
		var item domain.TicketListItem
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Subject,
			&item.Description,
			&item.HelpRequestID,
			&item.Status,
			&item.CreatedAt,
			&item.OwnerName,
			&item.ReplyCount,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
