package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cartonmill/cartones-backend/services"
)

// API bundles the services the handlers run against.
type API struct {
	Orders *services.OrderService
	Audit  *services.AuditService
	Store  services.CardStore
	Hub    *services.ProgressHub
}

// CreateOrder generates and persists every series of one order. Progress is
// broadcast to websocket clients while the order runs.
func (a *API) CreateOrder(c *gin.Context) {
	var req services.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	orderID, series, err := a.Orders.GenerateOrder(req, a.Hub.Broadcast)
	if err != nil {
		if errors.Is(err, services.ErrTooManyConflicts) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "order_id": orderID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order_id": orderID, "series": series})
}

// ListOrders returns the most recent orders. When a from/to date range is
// given it returns every order registered inside the range instead.
func (a *API) ListOrders(c *gin.Context) {
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		orders, err := a.Store.OrdersBetween(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	orders, err := a.Store.RecentOrders(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// parseDateRange builds the inclusive time range for an order lookup. A
// date-only "to" covers its whole day; a missing bound defaults to the epoch
// or now.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time

	if fromRaw != "" {
		parsed, _, err := parseDate(fromRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", fromRaw)
		}
		from = parsed
	}

	to = time.Now()
	if toRaw != "" {
		parsed, dateOnly, err := parseDate(toRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", toRaw)
		}
		if dateOnly {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		to = parsed
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	return t, true, err
}

// GetStats returns corpus totals and the highest serie in the store.
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.Store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// bindingError flattens validator field errors into one readable message.
func bindingError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
