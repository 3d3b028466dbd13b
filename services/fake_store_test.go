package services

import (
	"sort"
	"sync"
	"time"

	"github.com/cartonmill/cartones-backend/models"
)

// fakeStore is an in-memory CardStore with hooks to simulate uniqueness
// races and store failures.
type fakeStore struct {
	mu            sync.Mutex
	orders        []models.Order
	cards         []models.Card
	byFingerprint map[string]models.Card

	insertCalls     int
	insertConflicts int   // fail this many InsertCards calls with ErrDuplicateFingerprint
	insertErr       error // fatal error returned by InsertCards
	checkErr        error // fatal error returned by FindCardsByFingerprints

	collideFirstCheck bool // pretend the first pre-checked fingerprint already exists, once
	firstCheckDone    bool
	firstCheckFps     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byFingerprint: map[string]models.Card{}}
}

func (f *fakeStore) InsertOrder(order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = uint(len(f.orders) + 1)
	order.CreatedAt = time.Now()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeStore) InsertCards(cards []models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.insertConflicts > 0 {
		f.insertConflicts--
		return ErrDuplicateFingerprint
	}
	for _, c := range cards {
		if _, dup := f.byFingerprint[c.Fingerprint]; dup {
			return ErrDuplicateFingerprint
		}
	}
	for _, c := range cards {
		c.ID = uint(len(f.cards) + 1)
		c.CreatedAt = time.Now()
		f.cards = append(f.cards, c)
		f.byFingerprint[c.Fingerprint] = c
	}
	return nil
}

func (f *fakeStore) FindCardsByFingerprints(fingerprints []string) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.checkErr != nil {
		return nil, f.checkErr
	}

	existing := []models.Card{}
	if f.collideFirstCheck && !f.firstCheckDone && len(fingerprints) > 0 {
		f.firstCheckDone = true
		f.firstCheckFps = append([]string(nil), fingerprints...)
		existing = append(existing, models.Card{Serie: 999, Fingerprint: fingerprints[0]})
	}
	for _, fp := range fingerprints {
		if c, ok := f.byFingerprint[fp]; ok {
			existing = append(existing, c)
		}
	}
	return existing, nil
}

func (f *fakeStore) FindCardsBySeries(serie int) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cards := []models.Card{}
	for _, c := range f.cards {
		if c.Serie == serie {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CardNumber < cards[j].CardNumber })
	return cards, nil
}

func (f *fakeStore) FindCard(serie, cardNumber int) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.cards) - 1; i >= 0; i-- {
		if f.cards[i].Serie == serie && f.cards[i].CardNumber == cardNumber {
			c := f.cards[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) AllCards() ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Card(nil), f.cards...), nil
}

func (f *fakeStore) RecentOrders(limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := append([]models.Order(nil), f.orders...)
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (f *fakeStore) OrdersBetween(from, to time.Time) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := []models.Order{}
	for _, o := range f.orders {
		if !o.CreatedAt.Before(from) && !o.CreatedAt.After(to) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeStore) Stats() (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := Stats{TotalCards: int64(len(f.cards)), TotalOrders: int64(len(f.orders))}
	for _, c := range f.cards {
		if c.Serie > stats.LastSerie {
			stats.LastSerie = c.Serie
		}
	}
	return stats, nil
}
