package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cartonmill/cartones-backend/bingo"
	"github.com/cartonmill/cartones-backend/models"
	"github.com/cartonmill/cartones-backend/utils/logger"
)

// CardRef points at a stored card inside a report.
type CardRef struct {
	Serie      int `json:"serie"`
	CardNumber int `json:"card_number"`
}

// InvalidCard is one stored card that failed validation, with every finding.
type InvalidCard struct {
	Serie      int       `json:"serie"`
	CardNumber int       `json:"card_number"`
	Findings   []string  `json:"findings"`
	CreatedAt  time.Time `json:"created_at"`
}

// DuplicatePair reports two stored cards sharing a fingerprint.
type DuplicatePair struct {
	First       CardRef `json:"first"`
	Second      CardRef `json:"second"`
	Fingerprint string  `json:"fingerprint"`
}

// AuditReport is the derived result of a full corpus scan. It is never
// persisted.
type AuditReport struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Total        int             `json:"total"`
	Valid        int             `json:"valid"`
	Invalid      int             `json:"invalid"`
	InvalidCards []InvalidCard   `json:"invalid_cards"`
	Duplicates   []DuplicatePair `json:"duplicates"`
}

// SeriesCardCheck is the validation detail of one card in a series report.
type SeriesCardCheck struct {
	CardNumber int      `json:"card_number"`
	Valid      bool     `json:"valid"`
	Findings   []string `json:"findings"`
}

// SeriesIntegrityReport is the verdict for one stored series.
type SeriesIntegrityReport struct {
	Serie         int               `json:"serie"`
	TotalCards    int               `json:"total_cards"`
	ExpectedCards int               `json:"expected_cards"`
	Complete      bool              `json:"complete"`
	Findings      []string          `json:"findings"`
	Valid         int               `json:"valid"`
	Invalid       int               `json:"invalid"`
	Cards         []SeriesCardCheck `json:"cards"`
}

// AuditService reads the stored corpus and reports on its integrity without
// mutating anything.
type AuditService struct {
	store CardStore
	log   *zap.SugaredLogger
}

func NewAuditService(store CardStore) *AuditService {
	return &AuditService{store: store, log: logger.Log}
}

// AuditStore validates every stored card and detects cross-card duplicate
// fingerprints. Validation accumulates findings per card; a malformed card
// is reported with every problem it has.
func (s *AuditService) AuditStore() (*AuditReport, error) {
	cards, err := s.store.AllCards()
	if err != nil {
		return nil, fmt.Errorf("scanning cards: %w", err)
	}

	report := &AuditReport{
		GeneratedAt:  time.Now(),
		Total:        len(cards),
		InvalidCards: []InvalidCard{},
		Duplicates:   []DuplicatePair{},
	}

	for i := range cards {
		c := &cards[i]
		v := validateCard(c)
		if v.Valid {
			report.Valid++
			continue
		}
		report.Invalid++
		report.InvalidCards = append(report.InvalidCards, InvalidCard{
			Serie:      c.Serie,
			CardNumber: c.CardNumber,
			Findings:   v.Findings,
			CreatedAt:  c.CreatedAt,
		})
	}

	// Every later occurrence of a fingerprint pairs with the first card
	// seen for it, in scan order. Groups of three or more do not expand
	// into all pairs.
	firstSeen := make(map[string]*models.Card, len(cards))
	for i := range cards {
		c := &cards[i]
		if first, ok := firstSeen[c.Fingerprint]; ok {
			report.Duplicates = append(report.Duplicates, DuplicatePair{
				First:       CardRef{Serie: first.Serie, CardNumber: first.CardNumber},
				Second:      CardRef{Serie: c.Serie, CardNumber: c.CardNumber},
				Fingerprint: c.Fingerprint,
			})
		} else {
			firstSeen[c.Fingerprint] = c
		}
	}

	s.log.Infof("[Audit] scanned %d cards: %d valid, %d invalid, %d duplicate pairs",
		report.Total, report.Valid, report.Invalid, len(report.Duplicates))
	return report, nil
}

// VerifySeries checks one stored series: exactly six cards, numbered
// sequentially, no intra-series duplicates, every card structurally valid.
func (s *AuditService) VerifySeries(serie int) (*SeriesIntegrityReport, error) {
	cards, err := s.store.FindCardsBySeries(serie)
	if err != nil {
		return nil, fmt.Errorf("loading series %d: %w", serie, err)
	}

	report := &SeriesIntegrityReport{
		Serie:         serie,
		TotalCards:    len(cards),
		ExpectedCards: bingo.CardsPerSeries,
		Complete:      len(cards) == bingo.CardsPerSeries,
		Findings:      []string{},
		Cards:         []SeriesCardCheck{},
	}
	if !report.Complete {
		report.Findings = append(report.Findings,
			fmt.Sprintf("series has %d cards instead of %d", len(cards), bingo.CardsPerSeries))
	}

	for idx := range cards {
		c := &cards[idx]
		v := validateCard(c)
		if v.Valid {
			report.Valid++
		} else {
			report.Invalid++
		}
		report.Cards = append(report.Cards, SeriesCardCheck{
			CardNumber: c.CardNumber,
			Valid:      v.Valid,
			Findings:   v.Findings,
		})

		if c.CardNumber != idx+1 {
			report.Findings = append(report.Findings,
				fmt.Sprintf("card %d should be number %d", c.CardNumber, idx+1))
		}
	}

	seen := make(map[string]bool, len(cards))
	for i := range cards {
		if seen[cards[i].Fingerprint] {
			report.Findings = append(report.Findings, "series contains duplicate cards")
			break
		}
		seen[cards[i].Fingerprint] = true
	}

	return report, nil
}

func validateCard(c *models.Card) bingo.Validation {
	grid, err := c.Grid()
	if err != nil {
		return bingo.Validation{
			Valid:    false,
			Findings: []string{fmt.Sprintf("stored cells are not a valid array: %v", err)},
		}
	}
	return bingo.ValidateGrid(grid)
}
