package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/model"
	"github.com/Aidin1998/amlguard/internal/report"
)

// screeningRequest is the POST /screenings payload.
type screeningRequest struct {
	Transaction model.Transaction `json:"transaction" binding:"required"`
	Customer    model.Customer    `json:"customer" binding:"required"`
}

func (s *Server) screenTransaction(c *gin.Context) {
	var req screeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request: " + err.Error()})
		return
	}

	terminal, err := s.screening.Screen(c.Request.Context(), &req.Transaction, &req.Customer)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("screening failed",
			zap.String("transaction_id", req.Transaction.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "screening failed"})
		return
	}

	c.JSON(http.StatusOK, report.FromState(terminal))
}

func (s *Server) listCases(c *gin.Context) {
	records, err := s.cases.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": records})
}

func (s *Server) getCase(c *gin.Context) {
	record, err := s.cases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, casestore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load case"})
		return
	}
	c.JSON(http.StatusOK, record)
}
