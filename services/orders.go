package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartonmill/cartones-backend/bingo"
	"github.com/cartonmill/cartones-backend/models"
	"github.com/cartonmill/cartones-backend/utils/logger"
)

// Generation and color modes accepted by OrderRequest.
const (
	ModeNormal = "normal" // six distinct cards per series
	ModeFour   = "cuatro" // four larger cards: the first four of the series

	ColorFixed = "fixed" // one caller-chosen color for every card
	ColorCycle = "cycle" // rotate the six-color palette per series
)

const (
	flushSeriesThreshold = 50
	maxFlushAttempts     = 5
	chunkSeries          = 25
	pacingDelay          = 50 * time.Millisecond
	progressEvery        = 5
)

// ErrTooManyConflicts aborts an order after maxFlushAttempts straight
// uniqueness races on the same batch.
var ErrTooManyConflicts = errors.New("too many uniqueness conflicts while saving batch")

// Strategy selects how series are built.
type Strategy int

const (
	// StrategyWholeSeries partitions 1-90 across the six cards of a series.
	StrategyWholeSeries Strategy = iota
	// StrategyIndependent builds each card on its own.
	StrategyIndependent
)

// OrderRequest is one generation request as posted by the caller.
type OrderRequest struct {
	Series     int    `json:"series" binding:"required,min=1"`
	StartSerie int    `json:"start_serie" binding:"omitempty,min=1"`
	Mode       string `json:"mode" binding:"omitempty,oneof=normal cuatro"`
	ColorMode  string `json:"color_mode" binding:"omitempty,oneof=fixed cycle"`
	Color      string `json:"color" binding:"omitempty,hexcolor"`
	Client     string `json:"client"`
	Notes      string `json:"notes"`
	Chunked    bool   `json:"chunked"`
}

// Progress is one discrete generation milestone. Events are advisory; the
// protocol is correct without anyone listening.
type Progress struct {
	Phase       string `json:"phase"`
	Percent     int    `json:"percent"`
	Serie       int    `json:"serie,omitempty"`
	Cards       int    `json:"cards,omitempty"`
	Chunk       int    `json:"chunk,omitempty"`
	TotalChunks int    `json:"total_chunks,omitempty"`
}

// ProgressFunc observes progress events.
type ProgressFunc func(Progress)

// Series groups the cards generated under one series number.
type Series struct {
	Serie int           `json:"serie"`
	Cards []models.Card `json:"cards"`
}

// OrderService runs the generation and guarded persistence of orders.
// Generation itself is single-threaded; concurrency comes from other
// processes writing to the same store, which the flush protocol defends
// against with pre-checks, the store's unique index and bounded retries.
type OrderService struct {
	store    CardStore
	strategy Strategy
	log      *zap.SugaredLogger
}

func NewOrderService(store CardStore) *OrderService {
	return &OrderService{store: store, strategy: StrategyWholeSeries, log: logger.Log}
}

// WithStrategy switches the series-building strategy. The whole-series
// partition is the default.
func (s *OrderService) WithStrategy(strategy Strategy) *OrderService {
	s.strategy = strategy
	return s
}

// GenerateOrder registers the order, generates every requested series and
// persists all cards through the guarded batch protocol. It either returns
// every series persisted, or an error naming why the order aborted; batches
// flushed before an abort remain in the store.
func (s *OrderService) GenerateOrder(req OrderRequest, onProgress ProgressFunc) (string, []Series, error) {
	req = withDefaults(req)
	if req.Chunked {
		return s.generateChunked(req, onProgress)
	}
	return s.generate(req, onProgress)
}

func withDefaults(req OrderRequest) OrderRequest {
	if req.StartSerie == 0 {
		req.StartSerie = 1
	}
	if req.Mode == "" {
		req.Mode = ModeNormal
	}
	if req.ColorMode == "" {
		req.ColorMode = ColorCycle
	}
	if req.ColorMode == ColorFixed && req.Color == "" {
		req.Color = bingo.Palette[0]
	}
	return req
}

func cardsFor(mode string) int {
	if mode == ModeFour {
		return bingo.CardsPerSeriesLarge
	}
	return bingo.CardsPerSeries
}

func (s *OrderService) generate(req OrderRequest, onProgress ProgressFunc) (string, []Series, error) {
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	orderID := "ORD-" + uuid.NewString()
	report(Progress{Phase: "registering", Percent: 0})

	order := models.Order{
		OrderID:     orderID,
		SeriesCount: req.Series,
		StartSerie:  req.StartSerie,
		Mode:        req.Mode,
		ColorMode:   req.ColorMode,
		Color:       req.Color,
		Client:      req.Client,
		Notes:       req.Notes,
	}
	if err := s.store.InsertOrder(&order); err != nil {
		return "", nil, fmt.Errorf("registering order: %w", err)
	}
	s.log.Infof("[Orders] %s: generating %d series starting at %d (mode=%s)", orderID, req.Series, req.StartSerie, req.Mode)

	cardsPerSeries := cardsFor(req.Mode)
	bySerie := make(map[int][]models.Card, req.Series)
	serieOrder := make([]int, 0, req.Series)
	var buffer []models.Card

	for i := 0; i < req.Series; i++ {
		serie := req.StartSerie + i
		color := req.Color
		if req.ColorMode == ColorCycle {
			color = bingo.Palette[i%len(bingo.Palette)]
		}

		cards, err := s.buildSeriesCards(serie, color, req.Mode, orderID, req.Client)
		if err != nil {
			return orderID, nil, err
		}
		buffer = append(buffer, cards...)
		bySerie[serie] = cards
		serieOrder = append(serieOrder, serie)

		if i%progressEvery == 0 {
			report(Progress{Phase: "generating", Percent: i * 50 / req.Series, Serie: serie})
		}

		if len(buffer) >= flushSeriesThreshold*cardsPerSeries || i == req.Series-1 {
			report(Progress{Phase: "saving", Percent: 50 + (i+1)*50/req.Series, Cards: len(buffer)})
			committed, err := s.flushBuffer(buffer, req.Mode)
			if err != nil {
				return orderID, nil, err
			}
			// A flush may have regenerated series; make the returned
			// cards match what was actually committed.
			for serie, cards := range groupBySerie(committed) {
				bySerie[serie] = cards
			}
			buffer = nil
			time.Sleep(pacingDelay)
		}
	}

	report(Progress{Phase: "completed", Percent: 100})
	s.log.Infof("[Orders] %s: completed, %d series persisted", orderID, len(serieOrder))

	result := make([]Series, 0, len(serieOrder))
	for _, serie := range serieOrder {
		result = append(result, Series{Serie: serie, Cards: bySerie[serie]})
	}
	return orderID, result, nil
}

func (s *OrderService) buildSeriesCards(serie int, color, mode, orderID, client string) ([]models.Card, error) {
	count := cardsFor(mode)

	var grids []bingo.Grid
	var err error
	switch s.strategy {
	case StrategyIndependent:
		grids, err = bingo.BuildSeriesIndependent(count)
	default:
		grids, err = bingo.BuildSeries()
	}
	if err != nil {
		return nil, fmt.Errorf("building series %d: %w", serie, err)
	}

	cards := make([]models.Card, 0, count)
	for idx, grid := range grids[:count] {
		cards = append(cards, models.NewCard(serie, idx+1, grid, color, orderID, client))
	}
	return cards, nil
}

// flushState drives the guarded save of one batch.
type flushState int

const (
	stateChecking flushState = iota
	stateRegenerating
	stateInserting
	stateCommitted
	stateFailed
)

// flushBuffer persists one batch with the uniqueness guarantee: pre-check
// fingerprints against the store, regenerate any series that collided,
// re-check, then insert. An insert that still hits the unique index lost a
// race to a concurrent writer; back off and re-enter the check, at most
// maxFlushAttempts times.
func (s *OrderService) flushBuffer(buffer []models.Card, mode string) ([]models.Card, error) {
	current := append([]models.Card(nil), buffer...)
	attempts := 0
	var collisions []models.Card
	var failure error

	state := stateChecking
	for {
		switch state {
		case stateChecking:
			existing, err := s.store.FindCardsByFingerprints(fingerprintsOf(current))
			if err != nil {
				failure = fmt.Errorf("pre-check failed: %w", err)
				state = stateFailed
				continue
			}
			if len(existing) > 0 {
				collisions = existing
				state = stateRegenerating
			} else {
				state = stateInserting
			}

		case stateRegenerating:
			rebuilt, err := s.regenerateCollided(current, collisions, mode)
			if err != nil {
				failure = err
				state = stateFailed
				continue
			}
			current = rebuilt
			state = stateChecking

		case stateInserting:
			err := s.store.InsertCards(current)
			if err == nil {
				state = stateCommitted
				continue
			}
			if errors.Is(err, ErrDuplicateFingerprint) {
				attempts++
				if attempts >= maxFlushAttempts {
					failure = ErrTooManyConflicts
					state = stateFailed
					continue
				}
				s.log.Warnf("[Orders] uniqueness race on insert (attempt %d/%d), backing off", attempts, maxFlushAttempts)
				time.Sleep(conflictBackoff())
				state = stateChecking
				continue
			}
			failure = fmt.Errorf("saving batch: %w", err)
			state = stateFailed

		case stateCommitted:
			return current, nil

		case stateFailed:
			return nil, failure
		}
	}
}

// regenerateCollided drops every series that has a card already present in
// the store and rebuilds those series from scratch, keeping serie number,
// color, order and client of the originals.
func (s *OrderService) regenerateCollided(current, collisions []models.Card, mode string) ([]models.Card, error) {
	exists := make(map[string]bool, len(collisions))
	for _, c := range collisions {
		exists[c.Fingerprint] = true
	}

	affected := map[int]models.Card{}
	for _, c := range current {
		if exists[c.Fingerprint] {
			if _, ok := affected[c.Serie]; !ok {
				affected[c.Serie] = c
			}
		}
	}

	kept := make([]models.Card, 0, len(current))
	for _, c := range current {
		if _, bad := affected[c.Serie]; !bad {
			kept = append(kept, c)
		}
	}

	for serie, ref := range affected {
		s.log.Warnf("[Orders] serie %d collided with stored cards, regenerating", serie)
		rebuilt, err := s.buildSeriesCards(serie, ref.Color, mode, ref.OrderID, ref.Client)
		if err != nil {
			return nil, err
		}
		kept = append(kept, rebuilt...)
	}
	return kept, nil
}

func conflictBackoff() time.Duration {
	return 200*time.Millisecond + time.Duration(rand.Intn(500))*time.Millisecond
}

func fingerprintsOf(cards []models.Card) []string {
	fps := make([]string, len(cards))
	for i := range cards {
		fps[i] = cards[i].Fingerprint
	}
	return fps
}

func groupBySerie(cards []models.Card) map[int][]models.Card {
	grouped := map[int][]models.Card{}
	for _, c := range cards {
		grouped[c.Serie] = append(grouped[c.Serie], c)
	}
	return grouped
}

// generateChunked splits a long order into sequential 25-series sub-orders.
// Each chunk registers its own order row and flushes independently, which
// bounds memory and lets the caller surface partial progress; the progress
// window of each chunk is rescaled to the whole request.
func (s *OrderService) generateChunked(req OrderRequest, onProgress ProgressFunc) (string, []Series, error) {
	chunks := (req.Series + chunkSeries - 1) / chunkSeries
	all := make([]Series, 0, req.Series)
	firstOrderID := ""

	for chunk := 0; chunk < chunks; chunk++ {
		start := chunk * chunkSeries
		count := chunkSeries
		if start+count > req.Series {
			count = req.Series - start
		}

		sub := req
		sub.Chunked = false
		sub.Series = count
		sub.StartSerie = req.StartSerie + start

		chunkNo := chunk + 1
		scaled := func(p Progress) {
			if onProgress == nil {
				return
			}
			p.Percent = (start*100 + count*p.Percent) / req.Series
			p.Chunk = chunkNo
			p.TotalChunks = chunks
			onProgress(p)
		}

		orderID, series, err := s.generate(sub, scaled)
		if err != nil {
			return firstOrderID, nil, err
		}
		if firstOrderID == "" {
			firstOrderID = orderID
		}
		all = append(all, series...)
		time.Sleep(2 * pacingDelay)
	}

	return firstOrderID, all, nil
}
