package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cartonmill/cartones-backend/models"
)

// ErrDuplicateFingerprint reports that a bulk insert hit the unique index on
// card fingerprints, meaning another writer persisted an identical card
// between our pre-check and the insert.
var ErrDuplicateFingerprint = errors.New("duplicate card fingerprint")

// Stats summarizes the stored corpus.
type Stats struct {
	TotalCards  int64 `json:"total_cards"`
	TotalOrders int64 `json:"total_orders"`
	LastSerie   int   `json:"last_serie"`
}

// CardStore is the persistence contract the order and audit services run
// against. Production uses the gorm/Postgres implementation; tests use an
// in-memory fake.
type CardStore interface {
	InsertOrder(order *models.Order) error
	InsertCards(cards []models.Card) error
	FindCardsByFingerprints(fingerprints []string) ([]models.Card, error)
	FindCardsBySeries(serie int) ([]models.Card, error)
	FindCard(serie, cardNumber int) (*models.Card, error)
	AllCards() ([]models.Card, error)
	RecentOrders(limit int) ([]models.Order, error)
	OrdersBetween(from, to time.Time) ([]models.Order, error)
	Stats() (Stats, error)
}

// GormStore is the Postgres-backed CardStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertOrder(order *models.Order) error {
	return s.db.Create(order).Error
}

// InsertCards writes the whole batch in one statement. A fingerprint
// collision surfaces as ErrDuplicateFingerprint so the caller can tell a
// uniqueness race apart from a real store failure.
func (s *GormStore) InsertCards(cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	if err := s.db.Create(&cards).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateFingerprint
		}
		return err
	}
	return nil
}

func (s *GormStore) FindCardsByFingerprints(fingerprints []string) ([]models.Card, error) {
	cards := []models.Card{}
	if len(fingerprints) == 0 {
		return cards, nil
	}
	err := s.db.Where("fingerprint IN ?", fingerprints).Find(&cards).Error
	return cards, err
}

func (s *GormStore) FindCardsBySeries(serie int) ([]models.Card, error) {
	cards := []models.Card{}
	err := s.db.Where("serie = ?", serie).Order("card_number ASC").Find(&cards).Error
	return cards, err
}

// FindCard returns the newest card for a serie and card number, or nil when
// none exists.
func (s *GormStore) FindCard(serie, cardNumber int) (*models.Card, error) {
	var card models.Card
	err := s.db.Where("serie = ? AND card_number = ?", serie, cardNumber).
		Order("created_at DESC").First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *GormStore) AllCards() ([]models.Card, error) {
	cards := []models.Card{}
	err := s.db.Find(&cards).Error
	return cards, err
}

func (s *GormStore) RecentOrders(limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// OrdersBetween returns the orders registered inside the inclusive time
// range, newest first.
func (s *GormStore) OrdersBetween(from, to time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (s *GormStore) Stats() (Stats, error) {
	var stats Stats
	if err := s.db.Model(&models.Card{}).Count(&stats.TotalCards).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	var last struct{ Serie int }
	if err := s.db.Model(&models.Card{}).
		Select("COALESCE(MAX(serie), 0) AS serie").Scan(&last).Error; err != nil {
		return stats, err
	}
	stats.LastSerie = last.Serie
	return stats, nil
}
