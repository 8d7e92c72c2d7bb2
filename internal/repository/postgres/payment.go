package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"majaz-portal/internal/domain"
	"majaz-portal/internal/repository"
)

const codeUniqueViolation = "23505"

func (c *Client) AttachPaymentIntent(ctx context.Context, requestID string, kind domain.PaymentKind, intentID string, event domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := queryAttachPaymentIntent
	if kind == domain.PaymentDeposit {
		query = queryAttachDepositIntent
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		c.logger.Error("failed to start transaction", zap.Error(err))
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, requestID, intentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			c.logger.Warn(repository.ErrPaymentAlreadyAttached.Error(), zap.String("payment_intent_id", intentID))
			return fmt.Errorf("%w: %s", repository.ErrPaymentAlreadyAttached, intentID)
		}

		c.logger.Error("failed to attach payment intent", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to attach payment intent: %w", err)
	}

	if tag.RowsAffected() == 0 {
		c.logger.Warn(repository.ErrRequestNotFound.Error(), zap.String("request_id", requestID))
		return repository.ErrRequestNotFound
	}

	event.RequestID = requestID
	_, err = insertEvent(ctx, tx, event)
	if err != nil {
		c.logger.Error("failed to insert event", zap.String("request_id", requestID), zap.Error(err))
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		c.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.logger.Info("attached payment intent",
		zap.String("request_id", requestID),
		zap.String("payment_type", string(kind)),
		zap.String("payment_intent_id", intentID),
	)
	return nil
}

func (c *Client) FindRequestByPaymentIntent(ctx context.Context, intentID string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := scanRequest(c.pool.QueryRow(ctx, queryFindRequestByPaymentIntent, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.logger.Warn(repository.ErrRequestNotFound.Error(), zap.String("payment_intent_id", intentID))
			return nil, repository.ErrRequestNotFound
		}

		c.logger.Error("failed to find request by payment intent", zap.String("payment_intent_id", intentID), zap.Error(err))
		return nil, fmt.Errorf("failed to find request by payment intent: %w", err)
	}

	return req, nil
}

// ApplyPaymentUpdate locks the request, writes the audit event and moves the status
// from whatever the row holds at that point. When the event's Stripe id has been seen
// before nothing is changed and false is returned.
func (c *Client) ApplyPaymentUpdate(ctx context.Context, update domain.PaymentUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		c.logger.Error("failed to start transaction", zap.Error(err))
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, queryLockRequestStatus, update.RequestID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.logger.Warn(repository.ErrRequestNotFound.Error(), zap.String("request_id", update.RequestID))
			return false, repository.ErrRequestNotFound
		}

		c.logger.Error("failed to lock request", zap.String("request_id", update.RequestID), zap.Error(err))
		return false, fmt.Errorf("failed to lock request: %w", err)
	}

	update.Event.RequestID = update.RequestID
	inserted, err := insertEvent(ctx, tx, update.Event)
	if err != nil {
		c.logger.Error("failed to insert event", zap.String("request_id", update.RequestID), zap.Error(err))
		return false, err
	}

	if !inserted {
		c.logger.Info("payment event already applied", zap.String("request_id", update.RequestID))
		return false, nil
	}

	var ledger domain.Ledger
	err = tx.QueryRow(ctx, queryPaymentLedger, update.RequestID).Scan(&ledger.Paid, &ledger.Refunded)
	if err != nil {
		c.logger.Error("failed to read payment ledger", zap.String("request_id", update.RequestID), zap.Error(err))
		return false, fmt.Errorf("failed to read payment ledger: %w", err)
	}

	status := update.Next(domain.Status(current), ledger)
	refundedAt := update.RefundedAt
	if status != domain.StatusRefunded {
		refundedAt = nil
	}

	_, err = tx.Exec(ctx, queryApplyPaymentUpdate, update.RequestID, string(status), update.PaidAt, refundedAt)
	if err != nil {
		c.logger.Error("failed to update request", zap.String("request_id", update.RequestID), zap.Error(err))
		return false, fmt.Errorf("failed to update request: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		c.logger.Error("failed to commit transaction", zap.Error(err))
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.logger.Info("applied payment update",
		zap.String("request_id", update.RequestID),
		zap.String("from", current),
		zap.String("status", string(status)),
		zap.String("event_type", string(update.Event.Type)),
	)
	return true, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, event domain.Event) (bool, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	var id string
	err := tx.QueryRow(ctx, queryInsertEvent,
		event.ID, event.RequestID, string(event.Type), event.Description, payload, event.StripeEventID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert event: %w", err)
	}

	return true, nil
}
