package institution

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("institution not found")

// Institution is the tenant boundary. The domain column is matched against
// the part of a user's email after the first "@".
type Institution struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
