// Package socket streams policy-change events to subscribed
// gateways so they can drop cached authorizer decisions.
package socket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/polyauthz/groupgate/x/auth"
	"github.com/polyauthz/groupgate/x/policy"
)

var tracer = otel.Tracer("socket")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles the policy-change websocket
type Handler interface {
	Connect(c echo.Context) error
}

type handler struct {
	auth auth.Service
	rdb  *redis.Client
}

// NewHandler creates a new socket handler
func NewHandler(auth auth.Service, rdb *redis.Client) Handler {
	return &handler{auth, rdb}
}

// Connect authorizes the caller the websocket-adapter way (token
// query parameter, same Unauthorized contract), upgrades, and
// forwards everything published on the policy-change channel until
// either side goes away. A deny-all decision still subscribes: the
// credential verified, and change events carry no policy content.
func (h handler) Connect(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Socket.Handler.Connect")
	defer span.End()

	rawToken := c.QueryParam(auth.TokenQueryParam)
	_, err := h.auth.Authorize(ctx, rawToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the read pump only exists to notice the peer closing
	go func() {
		defer cancel()
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	pubsub := h.rdb.Subscribe(ctx, policy.ChangeChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				span.RecordError(err)
				slog.ErrorContext(ctx, "failed to receive policy change event",
					slog.String("reason", err.Error()),
				)
			}
			break
		}

		err = ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload))
		if err != nil {
			span.RecordError(err)
			break
		}
	}

	return nil
}
