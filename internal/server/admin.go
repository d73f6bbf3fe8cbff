package server

import (
	"net/http"
	"strings"

	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	"github.com/gin-gonic/gin"
)

// ReloadRules force-reloads one rule kind from its source, replacing the
// stored table.
func (s *Server) ReloadRules(c *gin.Context) {
	kind := rulesdomain.Kind(strings.TrimSpace(c.Param("kind")))

	if err := s.loader.Reload(c.Request.Context(), kind); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "kind": string(kind)})
}
