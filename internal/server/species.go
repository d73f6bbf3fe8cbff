package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSpeciesFamilies(c *gin.Context) {
	families, err := s.rulesRepo.SpeciesFamilies(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"families": families})
}

func (s *Server) SpeciesStatus(c *gin.Context) {
	family := strings.TrimSpace(c.Query("family"))
	specie := strings.TrimSpace(c.Query("specie"))

	records, err := s.speciesSvc.Find(c.Request.Context(), family, specie)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
