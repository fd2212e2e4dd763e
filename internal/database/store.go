package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for customer memory operations. Methods accept
// context.Context for cancellation and timeouts. Every mutation is committed
// before returning (flush-on-write), so memory survives a crash between
// comment passes.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetCustomer retrieves a customer by username, including the
	// interaction count. Returns nil, nil if the customer is unknown.
	GetCustomer(ctx context.Context, username string) (*Customer, error)

	// RecordInteraction appends an interaction for a customer, creating the
	// customer on first contact, and updates tone, loyalty flag, preferred
	// products, and last-interaction time in the same transaction. The
	// updated customer is returned.
	RecordInteraction(ctx context.Context, interaction *Interaction, product string) (*Customer, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const customerQuery = `
    SELECT c.username, c.created_at, c.updated_at, c.tone, c.regular,
           c.preferred_products, c.last_interaction,
           (SELECT COUNT(*) FROM interactions i WHERE i.username = c.username) AS interaction_count
    FROM customers c
    WHERE c.username = ?;
`

// GetCustomer retrieves a customer by username. Returns nil, nil if not found.
func (s *sqlxStore) GetCustomer(ctx context.Context, username string) (*Customer, error) {
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	var customer Customer
	err := s.db.GetContext(ctx, &customer, customerQuery, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting customer", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get customer %q: %w", username, err)
	}
	return &customer, nil
}

// RecordInteraction appends an interaction and updates the derived customer
// fields atomically.
func (s *sqlxStore) RecordInteraction(ctx context.Context, interaction *Interaction, product string) (*Customer, error) {
	if interaction == nil {
		return nil, fmt.Errorf("cannot record nil interaction")
	}
	if interaction.Username == "" {
		return nil, fmt.Errorf("interaction must have a username")
	}
	if interaction.Comment == "" {
		return nil, fmt.Errorf("interaction must have a comment")
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for recording interaction",
			"username", interaction.Username, "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	now := time.Now().UTC()

	var customer Customer
	err = tx.GetContext(ctx, &customer, customerQuery, interaction.Username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		customer = Customer{
			Username:  interaction.Username,
			CreatedAt: now,
			Tone:      ToneNeutral,
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO customers (username, created_at, updated_at, tone, regular, preferred_products)
             VALUES (?, ?, ?, ?, 0, '');`,
			customer.Username, now, now, customer.Tone)
		if err != nil {
			return nil, fmt.Errorf("failed to create customer %q: %w", interaction.Username, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load customer %q: %w", interaction.Username, err)
	}

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO interactions (username, comment, product_context, reply, created_at)
        VALUES (:username, :comment, :product_context, :reply, :created_at);`,
		interaction)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interaction for %q: %w", interaction.Username, err)
	}

	customer.InteractionCount++
	// Loyalty never reverts once earned.
	if customer.InteractionCount >= RegularCustomerThreshold {
		customer.Regular = true
	}
	customer.Tone = ClassifyTone(customer.Tone, interaction.Comment)
	customer.addProduct(product)
	customer.LastInteraction = sql.NullTime{Time: interaction.CreatedAt, Valid: true}
	customer.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
        UPDATE customers
        SET tone = ?, regular = ?, preferred_products = ?, last_interaction = ?, updated_at = ?
        WHERE username = ?;`,
		customer.Tone, customer.Regular, customer.PreferredProducts,
		customer.LastInteraction, customer.UpdatedAt, customer.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer %q: %w", interaction.Username, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Interaction recorded",
		"username", customer.Username,
		"interaction_count", customer.InteractionCount,
		"tone", customer.Tone,
		"regular", customer.Regular)
	return &customer, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")
	startTime := time.Now()

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed", "duration", time.Since(startTime))
	return nil
}
