//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mock/service.go
package auth

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/polyauthz/groupgate/core"
	"github.com/polyauthz/groupgate/x/policy"
	"github.com/polyauthz/groupgate/x/token"
)

var tracer = otel.Tracer("auth")

// Service is the interface for auth service
type Service interface {
	Authorize(ctx context.Context, rawToken string) (core.Decision, error)
}

type service struct {
	verifier token.Verifier
	policy   policy.Service
}

// NewService creates a new auth service
func NewService(verifier token.Verifier, policy policy.Service) Service {
	return &service{verifier, policy}
}

// Authorize runs the whole adapter pipeline behind the protocol
// edge: verify the token, read its memberships, aggregate. Every
// failure collapses to ErrorUnauthorized here; the richer cause is
// logged and recorded on the span but never returned.
func (s *service) Authorize(ctx context.Context, rawToken string) (core.Decision, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authorize")
	defer span.End()

	if rawToken == "" {
		return core.Decision{}, core.NewErrorUnauthorized()
	}

	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "token verification failed",
			slog.String("reason", err.Error()),
		)
		return core.Decision{}, core.NewErrorUnauthorized()
	}

	decision, err := s.policy.Aggregate(ctx, claims.Groups, claims.Subject)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "policy aggregation failed",
			slog.String("reason", err.Error()),
		)
		return core.Decision{}, core.NewErrorUnauthorized()
	}

	return decision, nil
}
