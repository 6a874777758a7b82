package curation

const (
	ActionApproved = "approved"
	ActionBlocked  = "blocked"
	ActionPassed   = "passed"

	// ActionUnknown is used for events without a usable action field.
	ActionUnknown = "unknown"
	// PolicyUnknown is used for policy references without a usable policy_name.
	PolicyUnknown = "unknown"
)

// Policy is a reference to the curation policy that acted on a package.
type Policy struct {
	PolicyName string
}

// Event is a single curation audit record.
type Event struct {
	Action   string
	Policies []Policy
}

// Meta carries the pagination data of a page.
type Meta struct {
	// NextOffset is zero when there are no more pages.
	NextOffset  int
	ResultCount int
}

// Page is one decoded response of the audit packages endpoint.
type Page struct {
	Data []Event
	Meta Meta
}

// HasNext reports whether another page follows this one.
func (p Page) HasNext() bool {
	return p.Meta.NextOffset != 0
}
