package database

import "time"

// Profile is a saved birth moment. The derivation itself is never
// persisted; charts are recomputed from these fields on demand.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`           // YYYY-MM-DD
	BirthTime *string   `json:"birth_time,omitempty"` // HH:MM, nil when unknown
	Timezone  string    `json:"timezone"`             // IANA identifier
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	TrueSolar bool      `json:"true_solar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
