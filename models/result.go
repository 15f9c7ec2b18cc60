package models

type Status int

const (
	StatusSuccess Status = iota
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// RuleChangeResult is the outcome of opening or closing a single rule.
type RuleChangeResult struct {
	Rule    Rule
	Message string
	Status  Status
}

func (r RuleChangeResult) OK() bool {
	return r.Status == StatusSuccess
}

// AnyFailed reports whether at least one result has StatusError.
func AnyFailed(results []RuleChangeResult) bool {
	for _, r := range results {
		if !r.OK() {
			return true
		}
	}
	return false
}
