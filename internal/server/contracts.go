package server

import (
	"net/http"

	onboardingdomain "github.com/enfinitus/onboarding/internal/onboarding/domain"
	"github.com/gin-gonic/gin"
)

type importContractResponse struct {
	Success bool `json:"success"`
	onboardingdomain.ImportResult
}

func (s *Server) ImportContract(c *gin.Context) {
	var req onboardingdomain.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.onboardingSvc.Import(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, importContractResponse{Success: true, ImportResult: result})
}
