package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

// NewRepository shares the connection pool opened for the orders store;
// checkout sessions live in the same database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `id, user_id, idempotency_key, step, cart_snapshot, address,
	payment_method, gateway_order_id, order_id, created_at, updated_at`

func (r *Repository) CreateSession(ctx context.Context, session *domain.CheckoutSession) error {
	snapshotJSON, err := json.Marshal(session.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	addressJSON, err := marshalAddress(session.Address)
	if err != nil {
		return err
	}

	query := `INSERT INTO checkout_sessions (` + sessionColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.IdempotencyKey,
		session.Step,
		snapshotJSON,
		addressJSON,
		nullString(string(session.PaymentMethod)),
		nullString(session.GatewayOrderID),
		nullString(session.OrderID))
	if insertErr != nil {
		return fmt.Errorf("insert checkout session: %w", insertErr)
	}
	return nil
}

func (r *Repository) UpdateSession(ctx context.Context, session *domain.CheckoutSession) error {
	snapshotJSON, err := json.Marshal(session.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	addressJSON, err := marshalAddress(session.Address)
	if err != nil {
		return err
	}

	query := `UPDATE checkout_sessions
	          SET step = $2, cart_snapshot = $3, address = $4, payment_method = $5,
	              gateway_order_id = $6, order_id = $7, updated_at = NOW()
	          WHERE id = $1`

	res, updateErr := r.db.ExecContext(ctx, query,
		session.ID,
		session.Step,
		snapshotJSON,
		addressJSON,
		nullString(string(session.PaymentMethod)),
		nullString(session.GatewayOrderID),
		nullString(session.OrderID))
	if updateErr != nil {
		return fmt.Errorf("update checkout session: %w", updateErr)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (r *Repository) GetSessionByIdempotencyKey(ctx context.Context, key string) (*domain.CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE idempotency_key = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	return session, err
}

func scanSession(row *sql.Row) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	var snapshotJSON []byte
	var addressJSON []byte
	var paymentMethod, gatewayOrderID, orderID sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.IdempotencyKey,
		&session.Step,
		&snapshotJSON,
		&addressJSON,
		&paymentMethod,
		&gatewayOrderID,
		&orderID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(snapshotJSON, &session.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	if len(addressJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addressJSON, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal session address: %w", err)
		}
		session.Address = &addr
	}
	session.PaymentMethod = domain.PaymentMethod(paymentMethod.String)
	session.GatewayOrderID = gatewayOrderID.String
	session.OrderID = orderID.String
	return &session, nil
}

func marshalAddress(addr *domain.Address) (interface{}, error) {
	if addr == nil {
		return nil, nil
	}
	raw, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session address: %w", err)
	}
	return raw, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
