// Package auth hosts the protocol adapters in front of the policy
// aggregator.
package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/polyauthz/groupgate/core"
)

// Handler is the interface for the authorizer adapters
type Handler interface {
	Rest(c echo.Context) error
	Websocket(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new auth handler
func NewHandler(service Service) Handler {
	return &handler{service}
}

// Rest authorizes a REST-flavored request. The credential comes from
// the Authorization header; a missing header is rejected before the
// verifier or the store is ever touched.
func (h handler) Rest(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Auth.Handler.Rest")
	defer span.End()

	rawToken := stripBearer(c.Request().Header.Get(AuthorizationHeader))
	if rawToken == "" {
		return unauthorized(c)
	}

	decision, err := h.service.Authorize(ctx, rawToken)
	if err != nil {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, decision)
}

// Websocket authorizes a WebSocket-flavored request, token in the
// query string.
func (h handler) Websocket(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Auth.Handler.Websocket")
	defer span.End()

	rawToken := c.QueryParam(TokenQueryParam)
	if rawToken == "" {
		return unauthorized(c)
	}

	decision, err := h.service.Authorize(ctx, rawToken)
	if err != nil {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, decision)
}

// unauthorized is the single failure shape of both adapters. The
// gateway recognizes only the literal message; anything else would
// surface as a 500 on its side.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"message": core.NewErrorUnauthorized().Error(),
	})
}

func stripBearer(header string) string {
	if header == "" {
		return ""
	}

	split := strings.Split(header, " ")
	if len(split) == 2 && split[0] == "Bearer" {
		return split[1]
	}

	// some gateways forward the bare token
	if len(split) == 1 {
		return split[0]
	}

	return ""
}
