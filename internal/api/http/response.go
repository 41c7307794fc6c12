// Package http holds the transport-level pieces shared by every
// feature: the response envelope, the health endpoint and middleware.
package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// Envelope is the uniform response shape of the API.
type Envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Error   *ErrorBody       `json:"error,omitempty"`
	Meta    *domain.PageMeta `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func OKPage(c *gin.Context, data any, meta domain.PageMeta) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta})
}

// Fail writes an error envelope. Business errors (validation, not
// found) ride HTTP 200 with success:false per the API contract;
// unresolvable identity is 401 and anything unexpected is a generic
// 500 with the cause logged, never echoed.
func Fail(c *gin.Context, err error, fallback string) {
	if e := apperr.As(err); e != nil {
		status := http.StatusOK
		switch e.Code {
		case apperr.CodeUnauthorized:
			status = http.StatusUnauthorized
		case apperr.CodeInternal:
			status = http.StatusInternalServerError
		case apperr.CodeRateLimited:
			status = http.StatusTooManyRequests
		}
		c.JSON(status, Envelope{Success: false, Error: &ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		}})
		return
	}

	log.Printf("[error] request_id=%s path=%s error=%v", c.GetString("request_id"), c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: &ErrorBody{
		Code:    apperr.CodeInternal,
		Message: fallback,
	}})
}

// FailStatus writes an error envelope with an explicit transport
// status, used where the contract calls for real HTTP error codes
// (e.g. upload validation failures).
func FailStatus(c *gin.Context, status int, err *apperr.Error) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}})
}
