package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the JSON shape every endpoint returns
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes the page window for a total row count
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// OK returns a 200 envelope with data
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created returns a 201 envelope with data
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message returns a success envelope carrying only a message
func Message(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: true, Message: message})
}

// List returns a 200 envelope with data and pagination
func List(c echo.Context, data interface{}, pagination *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// Error returns a failure envelope with the given status
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// BadRequest returns a 400 failure envelope
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized returns a 401 failure envelope
func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

// Forbidden returns a 403 failure envelope
func Forbidden(c echo.Context, message string) error {
	return Error(c, http.StatusForbidden, message)
}

// NotFound returns a 404 failure envelope
func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

// Conflict returns a 409 failure envelope
func Conflict(c echo.Context, message string) error {
	return Error(c, http.StatusConflict, message)
}

// Internal returns a generic 500 failure envelope. The cause is expected to
// be logged by the caller; it is never echoed to the client.
func Internal(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "internal server error")
}

// EntityAccessError is the envelope returned when a loaded entity belongs to
// a different tenant than the one the request resolved to
func EntityAccessError(c echo.Context) error {
	return Error(c, http.StatusForbidden, "entity access error: resource belongs to another tenant")
}
