package models

import "time"

// Project is a named container of samples. The backend owns the record; the
// client only ever holds a transient mirror of the last fetched state.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Samples     []Sample  `json:"samples,omitempty"`
}
