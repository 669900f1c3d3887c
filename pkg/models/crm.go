package models

// EligibleStatus marks a contact as eligible for dispatch.
const EligibleStatus = "SIM"

// Contact is the canonical recipient record produced by every ingestion source
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"` // digits with an optional leading +
	Status string `json:"status"`
}

// Eligible reports whether the contact carries the eligibility sentinel.
func (c Contact) Eligible() bool {
	return c.Status == EligibleStatus
}

// Notice is a user-facing message describing the outcome of an operator action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"` // "destructive" for failures
}
