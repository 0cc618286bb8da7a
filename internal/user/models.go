package user

import (
	"time"
)

// Record is the persisted representation of a user. Latitude, longitude,
// timezone, and city are derived fields: they always come from the most
// recent geolocation resolution of the current zip code + country pair.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	City      string    `json:"city,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"` // always UTC
	UpdatedAt time.Time `json:"updatedAt"` // always UTC
}

// ChangeEvent describes a mutation of a user record, published after the
// store write succeeds.
type ChangeEvent struct {
	Op         string    `json:"op"` // created, updated, deleted
	ID         string    `json:"id"`
	Record     *Record   `json:"record,omitempty"` // nil for deletes
	OccurredAt time.Time `json:"occurredAt"`
}
