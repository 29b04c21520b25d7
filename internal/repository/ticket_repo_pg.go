package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifasolidaria/rifa/internal/domain"
)

type TicketRepository interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Ticket, error)
	ListByToken(ctx context.Context, token string) ([]domain.Ticket, error)
	Reserve(ctx context.Context, numbers []int, buyer domain.Buyer, token string, reservedAt, expiresAt time.Time) error
	MarkPaid(ctx context.Context, token, proofURL string) (int64, error)
	ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]domain.Ticket, error)
}

// NumberTakenError reports the first requested number that was no longer
// available; the whole reservation is rolled back when it is returned.
type NumberTakenError struct {
	Number int
}

func (e *NumberTakenError) Error() string {
	return fmt.Sprintf("number %d is not available", e.Number)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *PGTicketRepository {
	return &PGTicketRepository{db: db}
}

// EnsureSchema creates the tickets table if it does not exist yet. Rows
// materialize lazily on first reservation; absent numbers read as available.
func (r *PGTicketRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tickets (
			number            INT PRIMARY KEY,
			status            TEXT NOT NULL DEFAULT 'available',
			buyer_name        TEXT,
			buyer_phone       TEXT,
			buyer_instagram   TEXT,
			reservation_token TEXT,
			reserved_at       TIMESTAMPTZ,
			expires_at        TIMESTAMPTZ,
			proof_url         TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_tickets_buyer_phone ON tickets (buyer_phone);
		CREATE INDEX IF NOT EXISTS idx_tickets_reservation_token ON tickets (reservation_token);
	`)
	if err != nil {
		return fmt.Errorf("ensure tickets schema: %w", err)
	}
	return nil
}

const ticketColumns = `number, status, coalesce(buyer_name, ''), coalesce(buyer_phone, ''), coalesce(buyer_instagram, ''), coalesce(reservation_token, ''), reserved_at, expires_at, coalesce(proof_url, ''), created_at, updated_at`

func (r *PGTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *PGTicketRepository) ListByPhone(ctx context.Context, phone string) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE buyer_phone=$1 ORDER BY number`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *PGTicketRepository) ListByToken(ctx context.Context, token string) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE reservation_token=$1 ORDER BY number`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Reserve writes one conditionally-upserted row per number inside a single
// transaction. A number whose row is past available aborts the whole set,
// so a reservation is all-or-nothing.
func (r *PGTicketRepository) Reserve(ctx context.Context, numbers []int, buyer domain.Buyer, token string, reservedAt, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, number := range numbers {
		res, err := tx.Exec(ctx, `
			INSERT INTO tickets (number, status, buyer_name, buyer_phone, buyer_instagram, reservation_token, reserved_at, expires_at)
			VALUES ($1, 'reserved', $2, $3, $4, $5, $6, $7)
			ON CONFLICT (number) DO UPDATE SET
				status = 'reserved',
				buyer_name = EXCLUDED.buyer_name,
				buyer_phone = EXCLUDED.buyer_phone,
				buyer_instagram = EXCLUDED.buyer_instagram,
				reservation_token = EXCLUDED.reservation_token,
				reserved_at = EXCLUDED.reserved_at,
				expires_at = EXCLUDED.expires_at,
				updated_at = now()
			WHERE tickets.status = 'available'`,
			number, buyer.Name, buyer.Phone, buyer.Instagram, token, reservedAt, expiresAt)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return &NumberTakenError{Number: number}
		}
	}

	return tx.Commit(ctx)
}

// MarkPaid flips every reserved row of a reservation to paid and records
// the proof reference. Returns the number of rows confirmed; zero means
// the token matched nothing still reserved.
func (r *PGTicketRepository) MarkPaid(ctx context.Context, token, proofURL string) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE tickets SET status='paid', proof_url=$2, updated_at=now() WHERE reservation_token=$1 AND status='reserved'`, token, proofURL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// ExpireReservedBefore returns stale reserved numbers to available and
// clears the buyer fields. The pre-update buyer details are returned so
// callers can publish expiry events.
func (r *PGTicketRepository) ExpireReservedBefore(ctx context.Context, deadline time.Time) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		WITH stale AS (
			SELECT number, buyer_name, buyer_phone, reservation_token
			FROM tickets
			WHERE status = 'reserved' AND expires_at <= $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tickets t SET
			status = 'available',
			buyer_name = NULL,
			buyer_phone = NULL,
			buyer_instagram = NULL,
			reservation_token = NULL,
			reserved_at = NULL,
			expires_at = NULL,
			updated_at = now()
		FROM stale s
		WHERE t.number = s.number
		RETURNING s.number, coalesce(s.buyer_name, ''), coalesce(s.buyer_phone, ''), coalesce(s.reservation_token, '')`,
		deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Ticket
	for rows.Next() {
		t := domain.Ticket{Status: domain.TicketStatusAvailable}
		if err := rows.Scan(&t.Number, &t.BuyerName, &t.BuyerPhone, &t.ReservationToken); err != nil {
			return nil, err
		}
		expired = append(expired, t)
	}
	return expired, rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.Number, &t.Status, &t.BuyerName, &t.BuyerPhone, &t.BuyerInstagram, &t.ReservationToken, &t.ReservedAt, &t.ExpiresAt, &t.ProofURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

var _ TicketRepository = (*PGTicketRepository)(nil)
