package policy

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/polyauthz/groupgate/core"
	mock_policy "github.com/polyauthz/groupgate/x/policy/mock"
)

func newRecord(group, policy string) core.GroupPolicy {
	return core.GroupPolicy{
		GroupName: group,
		Policy:    policy,
	}
}

// empty group list denies immediately, without touching the store
func TestAggregateEmptyGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	// no GetBatch expectation: the lookup must be skipped

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{}, "user0")

	assert.NoError(t, err)
	assert.Equal(t, core.DenyAllDecision(), decision)
	assert.Nil(t, decision.Context)
}

func TestAggregateSingleGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"admin"}).Return(
		[]core.GroupPolicy{
			newRecord("admin", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "API-1", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-1"},
					{"Sid": "API-2", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-2"}
				]
			}`),
		}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"admin"}, "subject0")

	assert.NoError(t, err)
	assert.Equal(t, "*", decision.PrincipalID)
	assert.Equal(t, "2012-10-17", decision.PolicyDocument.Version)
	if assert.Len(t, decision.PolicyDocument.Statement, 2) {
		assert.Equal(t, "API-1", decision.PolicyDocument.Statement[0].Sid)
		assert.Equal(t, "API-2", decision.PolicyDocument.Statement[1].Sid)
	}
	if assert.NotNil(t, decision.Context) {
		assert.Equal(t, "subject0", decision.Context.UserID)
	}
}

// statement count equals the sum over well-formed records, in
// retrieval order, statements untouched
func TestAggregateStatementUnion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"admin", "group1"}).Return(
		[]core.GroupPolicy{
			newRecord("admin", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "API-1", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-1"},
					{"Sid": "API-2", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-2"}
				]
			}`),
			newRecord("group1", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "API-3", "Effect": "Deny", "Action": "execute-api:Invoke", "Resource": "arn:api-3"}
				]
			}`),
		}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"admin", "group1"}, "subject0")

	assert.NoError(t, err)
	if assert.Len(t, decision.PolicyDocument.Statement, 3) {
		assert.Equal(t, core.PolicyStatement{
			Sid:      "API-1",
			Effect:   "Allow",
			Action:   "execute-api:Invoke",
			Resource: "arn:api-1",
		}, decision.PolicyDocument.Statement[0])
		assert.Equal(t, "API-2", decision.PolicyDocument.Statement[1].Sid)
		assert.Equal(t, "API-3", decision.PolicyDocument.Statement[2].Sid)
		assert.Equal(t, "Deny", decision.PolicyDocument.Statement[2].Effect)
	}
}

// one malformed record out of N is skipped, the rest still count
func TestAggregateSkipsMalformedRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"admin", "group1", "group2"}).Return(
		[]core.GroupPolicy{
			newRecord("admin", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "API-1", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-1"},
					{"Sid": "API-2", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-2"}
				]
			}`),
			newRecord("group1", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "API-3", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:api-3"}
				]
			}`),
			newRecord("group2", ``), // hand-edited row without a policy
		}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"admin", "group1", "group2"}, "subject0")

	assert.NoError(t, err)
	assert.Len(t, decision.PolicyDocument.Statement, 3)
}

// all records malformed collapses to deny-all, not an empty allow
func TestAggregateAllMalformed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"group1", "group2"}).Return(
		[]core.GroupPolicy{
			newRecord("group1", `{"oops": true}`),
			newRecord("group2", `not even json`),
		}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"group1", "group2"}, "subject0")

	assert.NoError(t, err)
	assert.Equal(t, core.DenyAllDecision(), decision)
}

// store returning nothing is a deny, not an error
func TestAggregateNoMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"group2"}).Return([]core.GroupPolicy{}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"group2"}, "subject0")

	assert.NoError(t, err)
	assert.Equal(t, core.DenyAllDecision(), decision)
	assert.Len(t, decision.PolicyDocument.Statement, 1)
	assert.Equal(t, "Deny", decision.PolicyDocument.Statement[0].Effect)
}

// store failures propagate untouched; converting them is the
// adapter's job
func TestAggregateStoreFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection refused")

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"admin"}).Return(nil, boom)

	s := NewService(mockRepo)
	_, err := s.Aggregate(context.Background(), []string{"admin"}, "subject0")

	assert.ErrorIs(t, err, boom)
}

// the first decoded record's version wins, even when later records
// disagree
func TestAggregateVersionFromFirstRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_policy.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetBatch(gomock.Any(), []string{"group1", "group2", "group3"}).Return(
		[]core.GroupPolicy{
			newRecord("group1", `{"oops": true}`), // malformed, must not pin the version
			newRecord("group2", `{
				"Version": "2008-10-17",
				"Statement": [
					{"Sid": "OLD-1", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:old"}
				]
			}`),
			newRecord("group3", `{
				"Version": "2012-10-17",
				"Statement": [
					{"Sid": "NEW-1", "Effect": "Allow", "Action": "execute-api:Invoke", "Resource": "arn:new"}
				]
			}`),
		}, nil)

	s := NewService(mockRepo)
	decision, err := s.Aggregate(context.Background(), []string{"group1", "group2", "group3"}, "subject0")

	assert.NoError(t, err)
	assert.Equal(t, "2008-10-17", decision.PolicyDocument.Version)
	assert.Len(t, decision.PolicyDocument.Statement, 2)
}

func TestDecodeDocument(t *testing.T) {
	document, err := DecodeDocument(`{"Version": "2012-10-17", "Statement": []}`)
	assert.NoError(t, err)
	assert.Equal(t, "2012-10-17", document.Version)

	_, err = DecodeDocument("")
	assert.Error(t, err)

	_, err = DecodeDocument(`{"Version": "2012-10-17"}`)
	assert.Error(t, err)

	_, err = DecodeDocument(`[1, 2, 3]`)
	assert.Error(t, err)
}
