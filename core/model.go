package core

import (
	"time"
)

// PolicyStatement is a single entry of a policy document.
// Statements are opaque to groupgate: they are copied into the
// aggregate decision verbatim and never interpreted, deduplicated,
// or reordered.
type PolicyStatement struct {
	Sid      string `json:"Sid,omitempty"`
	Effect   string `json:"Effect"`
	Action   string `json:"Action"`
	Resource string `json:"Resource"`
}

// PolicyDocument is the policy body stored per group and returned in
// the aggregate decision.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// DecisionContext carries the verified caller identity alongside the
// decision. The principal of the decision itself stays a wildcard.
type DecisionContext struct {
	UserID string `json:"UserId"`
}

// Decision is the authorization response handed back to the gateway.
type Decision struct {
	PrincipalID    string           `json:"principalId"`
	PolicyDocument PolicyDocument   `json:"policyDocument"`
	Context        *DecisionContext `json:"context,omitempty"`
}

// GroupPolicy is the persisted group-policy record.
// The policy column holds the raw document; rogue or hand-edited
// rows may carry anything, so readers decode it defensively.
type GroupPolicy struct {
	GroupName string    `json:"group" gorm:"primaryKey;type:text"`
	Policy    string    `json:"policy" gorm:"type:json"`
	Revision  string    `json:"revision" gorm:"type:char(20)"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;autoCreateTime"`
	MDate     time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
