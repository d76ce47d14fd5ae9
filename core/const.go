package core

// PolicyVersion is the policy-document version of the deny-all
// policy.
const PolicyVersion = "2012-10-17"

// WildcardPrincipal is the principal id of every decision. Caller
// identity travels in the decision context, not in the principal.
const WildcardPrincipal = "*"

// DenyAllDecision returns the fixed policy that denies every action
// on every resource. It carries no context.
func DenyAllDecision() Decision {
	return Decision{
		PrincipalID: WildcardPrincipal,
		PolicyDocument: PolicyDocument{
			Version: PolicyVersion,
			Statement: []PolicyStatement{
				{
					Action:   "*",
					Effect:   "Deny",
					Resource: "*",
				},
			},
		},
	}
}
