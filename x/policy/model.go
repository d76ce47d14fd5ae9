package policy

import (
	"encoding/json"
	"fmt"

	"github.com/polyauthz/groupgate/core"
)

// ChangeChannel is the redis pub/sub channel group names are
// published on whenever a record is upserted or deleted.
const ChangeChannel = "policychanges"

// ChangeEvent is what subscribers receive on ChangeChannel.
type ChangeEvent struct {
	GroupName string `json:"group"`
	Revision  string `json:"revision"`
}

// DecodeDocument parses the raw policy column of a group-policy
// record. Hand-edited rows sometimes carry no policy at all, so the
// result is an explicit ok-or-malformed branch, not a panic path.
func DecodeDocument(raw string) (core.PolicyDocument, error) {
	if raw == "" {
		return core.PolicyDocument{}, fmt.Errorf("policy is empty")
	}

	var document core.PolicyDocument
	err := json.Unmarshal([]byte(raw), &document)
	if err != nil {
		return core.PolicyDocument{}, err
	}

	if document.Statement == nil {
		return core.PolicyDocument{}, fmt.Errorf("policy has no statement")
	}

	return document, nil
}
