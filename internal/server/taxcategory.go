package server

import (
	"net/http"
	"time"

	taxcategorydomain "github.com/GestionAscensores/elevarapp/internal/taxcategory/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetTaxCategory(c *gin.Context) {
	req := taxcategorydomain.ClassifyRequest{}
	if raw := c.Query("as_of"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("as_of", "invalid_date", "as_of must be RFC3339"))
			return
		}
		req.AsOf = &asOf
	}

	classification, err := s.taxSvc.Classify(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classification": classification})
}
