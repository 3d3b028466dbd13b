package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RunAudit scans the whole stored corpus and returns the audit report.
func (a *API) RunAudit(c *gin.Context) {
	report, err := a.Audit.AuditStore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// VerifySeries checks the integrity of one stored series.
func (a *API) VerifySeries(c *gin.Context) {
	serie, err := strconv.Atoi(c.Param("serie"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series number"})
		return
	}

	report, err := a.Audit.VerifySeries(serie)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
