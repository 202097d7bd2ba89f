package models

import "time"

// Company is a CRM company record. Companies are edited by external CRUD
// dialogs; the board only references them from deals.
type Company struct {
	ID      string
	Name    string
	Website string
	City    string
}

// Contact is a CRM contact record, optionally linked to a company.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	CompanyID string
}

// FullName returns the contact's display name.
func (c Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ActivityKind distinguishes the activity record types tracked against a deal.
type ActivityKind string

const (
	ActivityTask  ActivityKind = "task"
	ActivityEvent ActivityKind = "event"
	ActivityCall  ActivityKind = "call"
	ActivityNote  ActivityKind = "note"
)

// Activity is a single tracked activity (task, event, call or note)
// attached to a deal. Shown read-only in the deal detail pane.
type Activity struct {
	ID      string
	DealID  string
	Kind    ActivityKind
	Summary string
	DueDate time.Time
	Done    bool
}
