//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mock/service.go
package policy

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/polyauthz/groupgate/core"
)

var tracer = otel.Tracer("policy")

// Service is the interface for policy service
type Service interface {
	Aggregate(ctx context.Context, groups []string, userID string) (core.Decision, error)

	Get(ctx context.Context, group string) (core.GroupPolicy, error)
	Put(ctx context.Context, group string, document core.PolicyDocument) (core.GroupPolicy, error)
	Delete(ctx context.Context, group string) error
}

type service struct {
	repository Repository
}

// NewService creates a new policy service
func NewService(repository Repository) Service {
	return &service{repository}
}

// Aggregate merges the stored policies of the given groups into a
// single decision. Malformed records are skipped, never fatal; an
// empty aggregate is the deny-all policy, never an empty allow.
// Store errors propagate to the caller untouched. Read-only.
func (s *service) Aggregate(ctx context.Context, groups []string, userID string) (core.Decision, error) {
	ctx, span := tracer.Start(ctx, "Policy.Service.Aggregate")
	defer span.End()

	span.SetAttributes(attribute.Int("groups", len(groups)))

	if len(groups) == 0 {
		return core.DenyAllDecision(), nil
	}

	records, err := s.repository.GetBatch(ctx, groups)
	if err != nil {
		span.RecordError(err)
		return core.Decision{}, err
	}

	var version string
	var versionKnown bool
	var statements []core.PolicyStatement
	for _, record := range records {
		document, err := DecodeDocument(record.Policy)
		if err != nil {
			span.RecordError(core.NewErrorMalformedPolicy(record.GroupName))
			slog.WarnContext(ctx, "skipping malformed group policy",
				slog.String("group", record.GroupName),
				slog.String("reason", err.Error()),
			)
			continue
		}

		// first decoded record wins; divergent versions across
		// groups are not reconciled
		if !versionKnown {
			version = document.Version
			versionKnown = true
		}

		statements = append(statements, document.Statement...)
	}

	if len(statements) == 0 {
		return core.DenyAllDecision(), nil
	}

	return core.Decision{
		PrincipalID: core.WildcardPrincipal,
		PolicyDocument: core.PolicyDocument{
			Version:   version,
			Statement: statements,
		},
		Context: &core.DecisionContext{
			UserID: userID,
		},
	}, nil
}

// Get returns a group-policy record by group name
func (s *service) Get(ctx context.Context, group string) (core.GroupPolicy, error) {
	ctx, span := tracer.Start(ctx, "Policy.Service.Get")
	defer span.End()

	return s.repository.Get(ctx, group)
}

// Put stores the given document as the group's policy
func (s *service) Put(ctx context.Context, group string, document core.PolicyDocument) (core.GroupPolicy, error) {
	ctx, span := tracer.Start(ctx, "Policy.Service.Put")
	defer span.End()

	body, err := json.Marshal(document)
	if err != nil {
		span.RecordError(err)
		return core.GroupPolicy{}, err
	}

	return s.repository.Upsert(ctx, core.GroupPolicy{
		GroupName: group,
		Policy:    string(body),
	})
}

// Delete removes a group's policy record
func (s *service) Delete(ctx context.Context, group string) error {
	ctx, span := tracer.Start(ctx, "Policy.Service.Delete")
	defer span.End()

	return s.repository.Delete(ctx, group)
}
