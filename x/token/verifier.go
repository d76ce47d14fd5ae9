//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mock/verifier.go
// Package token verifies inbound identity tokens against the
// configured OIDC issuer.
package token

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/polyauthz/groupgate/util"
)

var tracer = otel.Tracer("token")

// Claims is the slice of the verified token groupgate cares about.
type Claims struct {
	Subject string
	Groups  []string
}

// Verifier checks a raw bearer token and returns its claims, or an
// error on any validation failure. Implementations are safe for
// concurrent use and are constructed once per process.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Claims, error)
}

type verifier struct {
	idTokenVerifier *oidc.IDTokenVerifier
	groupsClaim     string
}

// NewVerifier builds a verifier bound to the configured issuer and
// audience. The underlying provider fetches and caches the issuer's
// JWKS in memory for the life of the process, so signature checks
// after the first one cost no network round trip.
func NewVerifier(ctx context.Context, config util.Config) (Verifier, error) {
	provider, err := oidc.NewProvider(ctx, config.Authorizer.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve oidc issuer")
	}

	return &verifier{
		idTokenVerifier: provider.Verifier(&oidc.Config{ClientID: config.Authorizer.Audience}),
		groupsClaim:     config.Authorizer.GroupsClaim,
	}, nil
}

// Verify checks signature, expiry and audience, then pulls the
// subject and the group-membership claim out of the payload. A token
// without the groups claim verifies fine and just carries no groups.
func (v *verifier) Verify(ctx context.Context, rawToken string) (Claims, error) {
	ctx, span := tracer.Start(ctx, "Token.Verifier.Verify")
	defer span.End()

	idToken, err := v.idTokenVerifier.Verify(ctx, rawToken)
	if err != nil {
		span.RecordError(err)
		return Claims{}, err
	}

	var payload map[string]interface{}
	err = idToken.Claims(&payload)
	if err != nil {
		span.RecordError(err)
		return Claims{}, err
	}

	return Claims{
		Subject: idToken.Subject,
		Groups:  extractGroups(payload, v.groupsClaim),
	}, nil
}

func extractGroups(payload map[string]interface{}, claim string) []string {
	raw, ok := payload[claim].([]interface{})
	if !ok {
		return nil
	}

	groups := make([]string, 0, len(raw))
	for _, entry := range raw {
		group, ok := entry.(string)
		if !ok {
			continue
		}
		groups = append(groups, group)
	}

	return groups
}
