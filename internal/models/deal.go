package models

import "time"

// DealStatus is the lifecycle status of a deal.
type DealStatus string

const (
	DealOpen DealStatus = "open"
	DealWon  DealStatus = "won"
	DealLost DealStatus = "lost"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s DealStatus) Valid() bool {
	switch s {
	case DealOpen, DealWon, DealLost:
		return true
	}
	return false
}

// Deal is the unit of work tracked on the board. A deal belongs to exactly
// one stage at a time; StageID is the authoritative assignment and must match
// the containing stage's membership list on the board.
type Deal struct {
	ID   string
	Name string
	// Amount is the deal's monetary value in cents.
	Amount int64
	// CompanyID and ContactID are optional references to CRM records;
	// empty string means unset.
	CompanyID string
	ContactID string
	CloseDate time.Time
	// Probability is the estimated close probability, 0-100.
	Probability int
	Status      DealStatus
	StageID     string
	// Notes holds free-form markdown shown in the detail pane.
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
