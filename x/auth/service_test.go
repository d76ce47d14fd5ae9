package auth

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/polyauthz/groupgate/core"
	mock_policy "github.com/polyauthz/groupgate/x/policy/mock"
	"github.com/polyauthz/groupgate/x/token"
	mock_token "github.com/polyauthz/groupgate/x/token/mock"
)

func TestAuthorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	allow := core.Decision{
		PrincipalID: "*",
		PolicyDocument: core.PolicyDocument{
			Version: "2012-10-17",
			Statement: []core.PolicyStatement{
				{Sid: "API-1", Effect: "Allow", Action: "execute-api:Invoke", Resource: "arn:api-1"},
			},
		},
		Context: &core.DecisionContext{UserID: "subject0"},
	}

	mockVerifier := mock_token.NewMockVerifier(ctrl)
	mockVerifier.EXPECT().Verify(gomock.Any(), "token0").Return(token.Claims{
		Subject: "subject0",
		Groups:  []string{"admin"},
	}, nil)

	mockPolicy := mock_policy.NewMockService(ctrl)
	mockPolicy.EXPECT().Aggregate(gomock.Any(), []string{"admin"}, "subject0").Return(allow, nil)

	s := NewService(mockVerifier, mockPolicy)
	decision, err := s.Authorize(context.Background(), "token0")

	assert.NoError(t, err)
	assert.Equal(t, allow, decision)
}

// a missing credential never reaches the verifier or the store
func TestAuthorizeEmptyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := mock_token.NewMockVerifier(ctrl)
	mockPolicy := mock_policy.NewMockService(ctrl)
	// no expectations: neither collaborator may be called

	s := NewService(mockVerifier, mockPolicy)
	_, err := s.Authorize(context.Background(), "")

	assert.Error(t, err)
	assert.Equal(t, "Unauthorized", err.Error())
}

// any verifier failure surfaces as Unauthorized, nothing else
func TestAuthorizeVerifierFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := mock_token.NewMockVerifier(ctrl)
	mockVerifier.EXPECT().Verify(gomock.Any(), "expired").Return(token.Claims{}, errors.New("oidc: token is expired"))

	mockPolicy := mock_policy.NewMockService(ctrl)

	s := NewService(mockVerifier, mockPolicy)
	_, err := s.Authorize(context.Background(), "expired")

	assert.ErrorIs(t, err, core.ErrorUnauthorized{})
	assert.Equal(t, "Unauthorized", err.Error())
}

// store failures propagated out of the aggregator are converted at
// this boundary
func TestAuthorizeStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := mock_token.NewMockVerifier(ctrl)
	mockVerifier.EXPECT().Verify(gomock.Any(), "token0").Return(token.Claims{
		Subject: "subject0",
		Groups:  []string{"admin"},
	}, nil)

	mockPolicy := mock_policy.NewMockService(ctrl)
	mockPolicy.EXPECT().Aggregate(gomock.Any(), []string{"admin"}, "subject0").
		Return(core.Decision{}, errors.New("failed to query group policies: connection refused"))

	s := NewService(mockVerifier, mockPolicy)
	_, err := s.Authorize(context.Background(), "token0")

	assert.Equal(t, "Unauthorized", err.Error())
}

// a caller with no memberships gets the well-defined deny, not an
// error
func TestAuthorizeNoGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := mock_token.NewMockVerifier(ctrl)
	mockVerifier.EXPECT().Verify(gomock.Any(), "token0").Return(token.Claims{
		Subject: "subject0",
	}, nil)

	mockPolicy := mock_policy.NewMockService(ctrl)
	mockPolicy.EXPECT().Aggregate(gomock.Any(), []string(nil), "subject0").Return(core.DenyAllDecision(), nil)

	s := NewService(mockVerifier, mockPolicy)
	decision, err := s.Authorize(context.Background(), "token0")

	assert.NoError(t, err)
	assert.Equal(t, core.DenyAllDecision(), decision)
}
