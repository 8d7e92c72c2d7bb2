package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"majaz-portal/internal/domain"
	"majaz-portal/internal/repository"
)

const defaultListLimit = 100

func (c *Client) CreateRequest(ctx context.Context, req *domain.Request, event domain.Event) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		c.logger.Error("failed to start transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, queryCreateRequest,
		req.ID, req.CustomerID, req.CustomerEmail, req.CustomerName, req.CustomerPhone, req.Locale,
		string(req.Tier), string(req.Status), req.VehicleMake, req.VehicleModel, req.VehicleYear, req.VIN,
		req.Location, req.PreferredDate, req.Notes, req.Amount, req.Currency,
	)
	created, err := scanRequest(row)
	if err != nil {
		c.logger.Error("failed to insert request", zap.String("customer_id", req.CustomerID), zap.Error(err))
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}

	event.RequestID = created.ID
	_, err = insertEvent(ctx, tx, event)
	if err != nil {
		c.logger.Error("failed to insert event", zap.String("request_id", created.ID), zap.Error(err))
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		c.logger.Error("failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.logger.Info("successfully stored request", zap.String("request_id", created.ID), zap.String("tier", string(created.Tier)))
	return created, nil
}

func (c *Client) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := scanRequest(c.pool.QueryRow(ctx, queryGetRequest, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.logger.Warn(repository.ErrRequestNotFound.Error(), zap.String("request_id", id))
			return nil, repository.ErrRequestNotFound
		}

		c.logger.Error("failed to get request", zap.String("request_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

func (c *Client) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	rows, err := c.pool.Query(ctx, queryListRequests, filter.CustomerID, string(filter.Status), filter.Query, limit)
	if err != nil {
		c.logger.Error("failed to list requests", zap.String("customer_id", filter.CustomerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			c.logger.Error("failed to scan request", zap.Error(err))
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	err = rows.Err()
	if err != nil {
		c.logger.Error("rows error", zap.Error(err))
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return requests, nil
}

func (c *Client) RequestStats(ctx context.Context, customerID string) (map[domain.Status]int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, queryRequestStats, customerID)
	if err != nil {
		c.logger.Error("failed to count requests", zap.String("customer_id", customerID), zap.Error(err))
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	defer rows.Close()

	stats := make(map[domain.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		err = rows.Scan(&status, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request stats: %w", err)
		}
		stats[domain.Status(status)] = count
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}

func (c *Client) ListEvents(ctx context.Context, requestID string) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, queryListEvents, requestID)
	if err != nil {
		c.logger.Error("failed to list events", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var (
			ev        domain.Event
			eventType string
			payload   []byte
		)
		err = rows.Scan(&ev.ID, &ev.RequestID, &eventType, &ev.Description, &payload, &ev.StripeEventID, &ev.CreatedAt)
		if err != nil {
			c.logger.Error("failed to scan event", zap.Error(err))
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		ev.Payload = payload

		events = append(events, ev)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var (
		req          domain.Request
		tier, status string
	)

	err := row.Scan(
		&req.ID, &req.CustomerID, &req.CustomerEmail, &req.CustomerName, &req.CustomerPhone, &req.Locale,
		&tier, &status, &req.VehicleMake, &req.VehicleModel, &req.VehicleYear, &req.VIN, &req.Location,
		&req.PreferredDate, &req.Notes, &req.Amount, &req.Currency, &req.StripePaymentID, &req.StripeDepositID,
		&req.PaidAt, &req.RefundedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Tier = domain.Tier(tier)
	req.Status = domain.Status(status)

	return &req, nil
}
