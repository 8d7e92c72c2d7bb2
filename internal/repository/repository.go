package repository

//go:generate mockgen -destination=mock_repository/mock_repository.go -package=mock_repository . Repository

import (
	"context"
	"errors"

	"majaz-portal/internal/domain"
)

var (
	ErrRequestNotFound        = errors.New("request not found")
	ErrPaymentAlreadyAttached = errors.New("payment intent already attached to another request")
)

type Repository interface {
	ListTeamMembers(ctx context.Context, role domain.Role) ([]domain.TeamMember, error)

	CreateRequest(ctx context.Context, req *domain.Request, event domain.Event) (*domain.Request, error)
	GetRequest(ctx context.Context, id string) (*domain.Request, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error)
	RequestStats(ctx context.Context, customerID string) (map[domain.Status]int, error)
	ListEvents(ctx context.Context, requestID string) ([]domain.Event, error)

	AttachPaymentIntent(ctx context.Context, requestID string, kind domain.PaymentKind, intentID string, event domain.Event) error
	FindRequestByPaymentIntent(ctx context.Context, intentID string) (*domain.Request, error)
	ApplyPaymentUpdate(ctx context.Context, update domain.PaymentUpdate) (bool, error)

	Close()
}
