package domain

import "time"

// Event is a scheduled gathering owned by the user that created it.
type Event struct {
	ID          int64
	Name        string
	Description string
	Date        time.Time
	Location    string
	OwnerID     int64
	CreatedAt   time.Time
}

// OwnedBy reports whether userID is the event owner.
func (e *Event) OwnedBy(userID int64) bool {
	return e != nil && userID > 0 && e.OwnerID == userID
}
