package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/cartonmill/cartones-backend/bingo"
)

// Card is one persisted card face. Cards are written once by the order
// service and never updated; the unique index on Fingerprint is what makes
// the store-wide uniqueness guarantee hold against concurrent writers.
type Card struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Serie       int            `gorm:"index" json:"serie"`
	CardNumber  int            `json:"card_number"`
	Numbers     datatypes.JSON `json:"numbers"` // 27 cells row-major, 0 = blank
	Fingerprint string         `gorm:"uniqueIndex;size:160" json:"fingerprint"`
	Color       string         `json:"color"`
	OrderID     string         `gorm:"index" json:"order_id"`
	Client      string         `json:"client,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewCard builds the persisted form of a generated grid.
func NewCard(serie, number int, grid bingo.Grid, color, orderID, client string) Card {
	raw, _ := json.Marshal(grid)
	return Card{
		Serie:       serie,
		CardNumber:  number,
		Numbers:     datatypes.JSON(raw),
		Fingerprint: bingo.Fingerprint(grid),
		Color:       color,
		OrderID:     orderID,
		Client:      client,
	}
}

// Grid decodes the stored cell array.
func (c *Card) Grid() (bingo.Grid, error) {
	var g bingo.Grid
	if err := json.Unmarshal(c.Numbers, &g); err != nil {
		return nil, err
	}
	return g, nil
}
