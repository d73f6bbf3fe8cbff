package server

import (
	"net/http"

	compensationdomain "github.com/ecoverde/compensa/internal/compensation/domain"
	"github.com/gin-gonic/gin"
)

type treeBatchRequest struct {
	Items []compensationdomain.Item `json:"items"`
}

type patchBatchRequest struct {
	Patches []compensationdomain.Item `json:"patches"`
}

type appBatchRequest struct {
	Apps []compensationdomain.Item `json:"apps"`
}

func (s *Server) CalculateTreeBatch(c *gin.Context) {
	var req treeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.compensationSvc.CalculateTreeBatch(c.Request.Context(), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) CalculatePatchBatch(c *gin.Context) {
	var req patchBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.compensationSvc.CalculatePatchBatch(c.Request.Context(), req.Patches)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) CalculateAppBatch(c *gin.Context) {
	var req appBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.compensationSvc.CalculateAppBatch(c.Request.Context(), req.Apps)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
