package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListTreeMunicipalities(c *gin.Context) {
	municipalities, err := s.rulesRepo.TreeMunicipalities(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"municipios": municipalities})
}

func (s *Server) ListPatchMunicipalities(c *gin.Context) {
	municipalities, err := s.rulesRepo.PatchMunicipalities(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"municipios": municipalities})
}

func (s *Server) ListAppMunicipalities(c *gin.Context) {
	municipalities, err := s.rulesRepo.AppMunicipalities(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"municipios": municipalities})
}
