// Package policy hosts the group-policy store and the aggregation
// logic on top of it.
package policy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polyauthz/groupgate/core"
)

// Handler is the interface for the group-policy admin surface
type Handler interface {
	Get(c echo.Context) error
	Put(c echo.Context) error
	Delete(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new policy handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// Get returns a group-policy record by group name
func (h handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Policy.Handler.Get")
	defer span.End()

	group := c.Param("group")
	if group == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "group is required"})
	}

	record, err := h.service.Get(ctx, group)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Policy not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": record})
}

// Put stores the request body as the group's policy document.
// Bodies that do not decode as a policy document are rejected here
// so the store never gains a knowingly-malformed row.
func (h handler) Put(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Policy.Handler.Put")
	defer span.End()

	group := c.Param("group")
	if group == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "group is required"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": err.Error()})
	}

	var document core.PolicyDocument
	err = json.Unmarshal(body, &document)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": err.Error()})
	}
	if document.Statement == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "policy has no statement"})
	}

	record, err := h.service.Put(ctx, group, document)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": record})
}

// Delete removes a group's policy record
func (h handler) Delete(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Policy.Handler.Delete")
	defer span.End()

	group := c.Param("group")
	if group == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request", "message": "group is required"})
	}

	err := h.service.Delete(ctx, group)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Policy not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
