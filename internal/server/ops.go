package server

import (
	"net/http"
	"strconv"
	"strings"

	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCampaigns(c *gin.Context) {
	publishedOnly, err := publishedOnlyFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	campaigns, err := s.opsQuery.ListCampaigns(c.Request.Context(), publishedOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaigns})
}

// publishedOnlyFilter reads ?published=; an absent value lists every campaign.
func publishedOnlyFilter(c *gin.Context) (bool, error) {
	raw := strings.TrimSpace(c.Query("published"))
	if raw == "" {
		return false, nil
	}
	published, err := strconv.ParseBool(raw)
	if err != nil {
		return false, newValidationError("published", "invalid_published", "published must be true or false")
	}
	return published, nil
}

func (s *Server) ListMarketingCampaigns(c *gin.Context) {
	var query struct {
		pagination.Pagination
		FunnelID string `form:"funnel_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.opsQuery.ListVouchers(c.Request.Context(), voucherdomain.ListVoucherRequest{
		FunnelID:   strings.TrimSpace(query.FunnelID),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateMarketingCampaign(c *gin.Context) {
	var req voucherdomain.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	voucher, err := s.opsQuery.CreateVoucher(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": voucher})
}

func (s *Server) ListMargins(c *gin.Context) {
	margins, err := s.opsQuery.ListMargins(c.Request.Context(), strings.TrimSpace(c.Query("funnel_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": margins})
}

func (s *Server) UpsertMargin(c *gin.Context) {
	var req margindomain.UpsertMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	margin, err := s.opsQuery.UpsertMargin(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": margin})
}

func (s *Server) ListContractDrafts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.opsQuery.ListContractDrafts(c.Request.Context(), contractdomain.ListDraftsRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListMaLoDrafts(c *gin.Context) {
	drafts, err := s.opsQuery.GetMaLoDraftsByContractID(c.Request.Context(), strings.TrimSpace(c.Param("contractId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drafts})
}

func (s *Server) ListContractEvents(c *gin.Context) {
	events, err := s.opsQuery.ListContractEvents(c.Request.Context(), strings.TrimSpace(c.Param("contractId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// UpdateMaLoDraft takes a flat JSON object of editable fields.
func (s *Server) UpdateMaLoDraft(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	draft, err := s.opsEditSvc.UpdateMaLoDraft(c.Request.Context(), strings.TrimSpace(c.Param("id")), fields, actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) ConfirmSwitch(c *gin.Context) {
	contract, err := s.activationSvc.ConfirmSwitch(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contract})
}

func (s *Server) GetVerificationJob(c *gin.Context) {
	job, err := s.opsQuery.GetVerificationJob(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func (s *Server) CancelVerificationJob(c *gin.Context) {
	job, err := s.opsQuery.CancelVerificationJob(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}
