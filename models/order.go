package models

import "time"

// Order records one generation request. The row is written before any of the
// order's cards so every card in the store traces back to the request that
// produced it.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     string    `gorm:"uniqueIndex;size:64" json:"order_id"`
	SeriesCount int       `json:"series_count"`
	StartSerie  int       `json:"start_serie"`
	Mode        string    `json:"mode"`       // normal | cuatro
	ColorMode   string    `json:"color_mode"` // fixed | cycle
	Color       string    `json:"color,omitempty"`
	Client      string    `json:"client,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
