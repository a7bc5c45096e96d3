package server

import (
	"errors"
	"net/http"

	activationdomain "github.com/enfinitus/onboarding/internal/activation/domain"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	customerdomain "github.com/enfinitus/onboarding/internal/customer/domain"
	"github.com/enfinitus/onboarding/internal/lock"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	onboardingdomain "github.com/enfinitus/onboarding/internal/onboarding/domain"
	opseditdomain "github.com/enfinitus/onboarding/internal/opsedit/domain"
	pricingdomain "github.com/enfinitus/onboarding/internal/pricing/domain"
	"github.com/enfinitus/onboarding/internal/ratelimit"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type errorClass struct {
	status  int
	typ     string
	message string
	errs    []error
}

// errorClasses is matched in order; the first sentinel found in the chain
// becomes the response code.
var errorClasses = []errorClass{
	{
		status:  http.StatusInternalServerError,
		typ:     "integrity_error",
		message: "onboarding could not be completed consistently",
		errs:    []error{onboardingdomain.ErrIntegrity},
	},
	{
		status:  http.StatusBadRequest,
		typ:     "validation_error",
		message: "validation error",
		errs: []error{
			ErrInvalidRequest,
			onboardingdomain.ErrInvalidFunnel,
			onboardingdomain.ErrInvalidTariffID,
			onboardingdomain.ErrInvalidConsumption,
			onboardingdomain.ErrInvalidDesiredStartDate,
			customerdomain.ErrInvalidEmail,
			customerdomain.ErrInvalidName,
			customerdomain.ErrInvalidID,
			voucherdomain.ErrInvalidCode,
			voucherdomain.ErrInvalidWindow,
			voucherdomain.ErrInvalidDiscount,
			margindomain.ErrInvalidFunnel,
			margindomain.ErrInvalidTariffType,
			contractdomain.ErrInvalidContractID,
			contractdomain.ErrInvalidCustomerID,
			contractdomain.ErrInvalidMaLoDraftID,
			auditdomain.ErrInvalidContractID,
			auditdomain.ErrInvalidEventType,
			opseditdomain.ErrFieldNotEditable,
			opseditdomain.ErrInvalidFieldValue,
			opseditdomain.ErrEmptyPatch,
			opseditdomain.ErrInvalidActor,
			activationdomain.ErrInvalidActor,
			verificationdomain.ErrInvalidJobID,
			pricingdomain.ErrInvalidFunnel,
			tariffdomain.ErrInvalidZipCode,
			pagination.ErrInvalidPageToken,
		},
	},
	{
		status:  http.StatusUnprocessableEntity,
		typ:     "resolution_error",
		message: "order cannot be matched to a tariff",
		errs: []error{
			onboardingdomain.ErrUnresolvableTariff,
			campaigndomain.ErrNotFound,
			tariffdomain.ErrTariffNotOffered,
			tariffdomain.ErrNoQuote,
		},
	},
	{
		status:  http.StatusConflict,
		typ:     "conflict",
		message: "conflict",
		errs: []error{
			activationdomain.ErrDraftNotApproved,
			activationdomain.ErrAlreadyActive,
			opseditdomain.ErrDraftActive,
			verificationdomain.ErrJobNotCancelable,
			voucherdomain.ErrDuplicateCode,
			lock.ErrNotAcquired,
		},
	},
	{
		status:  http.StatusNotFound,
		typ:     "not_found",
		message: "not found",
		errs: []error{
			ErrNotFound,
			contractdomain.ErrDraftNotFound,
			contractdomain.ErrMaLoDraftNotFound,
			verificationdomain.ErrJobNotFound,
			customerdomain.ErrNotFound,
			pricingdomain.ErrSnapshotNotFound,
			gorm.ErrRecordNotFound,
		},
	},
	{
		status:  http.StatusTooManyRequests,
		typ:     "rate_limited",
		message: "too many requests",
		errs:    []error{ratelimit.ErrRateLimited},
	},
	{
		status:  http.StatusServiceUnavailable,
		typ:     "service_unavailable",
		message: "service unavailable",
		errs:    []error{ErrServiceUnavailable, tariffdomain.ErrFeedUnavailable},
	},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", ErrInvalidRequest.Error(), "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload()
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		code := ErrInvalidRequest.Error()
		if len(vErr.Errors) == 1 {
			code = vErr.Errors[0].Code
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    code,
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	for _, class := range errorClasses {
		for _, sentinel := range class.errs {
			if errors.Is(err, sentinel) {
				return class.status, errorPayload{
					Type:    class.typ,
					Code:    sentinel.Error(),
					Message: class.message,
				}
			}
		}
	}

	if db.IsConnectivityErr(err) {
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Code:    "store_unavailable",
			Message: "record store unavailable",
		}
	}
	return http.StatusInternalServerError, internalPayload()
}

func internalPayload() errorPayload {
	return errorPayload{
		Type:    "internal_error",
		Code:    ErrInternal.Error(),
		Message: "internal server error",
	}
}

// classifyErrorForLog feeds the request logger the same type and code the
// client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Code
}
