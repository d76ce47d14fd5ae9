package socket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/polyauthz/groupgate/core"
	mock_auth "github.com/polyauthz/groupgate/x/auth/mock"
)

// an unauthorized caller is turned away before the upgrade
func TestConnectMissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mock_auth.NewMockService(ctrl)
	mockAuth.EXPECT().Authorize(gomock.Any(), "").Return(core.Decision{}, core.NewErrorUnauthorized())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHandler(mockAuth, nil)
	err := h.Connect(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "Unauthorized"}`, rec.Body.String())
}
