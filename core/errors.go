package core

// ErrorUnauthorized is the only error allowed to cross the adapter
// boundary. The gateway maps the literal message to a 401, so the
// string must stay exactly "Unauthorized".
type ErrorUnauthorized struct {
}

func (e ErrorUnauthorized) Error() string {
	return "Unauthorized"
}

func NewErrorUnauthorized() ErrorUnauthorized {
	return ErrorUnauthorized{}
}

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}

// ErrorMalformedPolicy marks a group-policy record whose policy
// column does not decode as a policy document.
type ErrorMalformedPolicy struct {
	GroupName string
}

func (e ErrorMalformedPolicy) Error() string {
	return "Malformed Policy: " + e.GroupName
}

func NewErrorMalformedPolicy(groupName string) ErrorMalformedPolicy {
	return ErrorMalformedPolicy{GroupName: groupName}
}
