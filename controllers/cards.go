package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cartonmill/cartones-backend/bingo"
)

// GetSeries returns all cards of a series, ordered by card number.
func (a *API) GetSeries(c *gin.Context) {
	serie, err := strconv.Atoi(c.Param("serie"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series number"})
		return
	}

	cards, err := a.Store.FindCardsBySeries(serie)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GetCard returns one card of a series.
func (a *API) GetCard(c *gin.Context) {
	serie, err := strconv.Atoi(c.Param("serie"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series number"})
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card number"})
		return
	}

	card, err := a.Store.FindCard(serie, number)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch card"})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

type validateRequest struct {
	Numbers []int `json:"numbers" binding:"required"`
}

// ValidateCard checks a posted cell array against the grid rules.
func (a *API) ValidateCard(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}
	c.JSON(http.StatusOK, bingo.ValidateGrid(bingo.Grid(req.Numbers)))
}
