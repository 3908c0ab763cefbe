// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"trainops_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Envelope is the uniform action-result body: callers branch on Success
// and surface Message directly, so expected business failures never
// need exception handling on the client side.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// JSON sends a raw JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a successful envelope.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// OKPaged sends a successful envelope with pagination metadata.
func OKPaged(c *gin.Context, message string, data interface{}, p Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// Created sends a successful envelope with 201 status.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Error sends a failure envelope with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Envelope{Success: false, Message: message, Details: details})
}

// HandleError maps domain errors to HTTP responses. Typed *apperr.Error
// values use their Kind for the status code; anything untyped falls
// back to a generic 500 without echoing internal detail.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		message := domainErr.Message
		if domainErr.Kind == apperr.KindInternal || domainErr.Kind == apperr.KindUnknown {
			message = "something went wrong, please try again"
		}
		c.JSON(domainErr.HTTPStatus(), Envelope{
			Success: false,
			Message: message,
			Details: domainErr.Details,
		})
		return true
	}

	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "something went wrong, please try again",
	})
	return true
}
