package handler

import (
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	s := session.New(resp.Token, resp.User)
	h.sessions.Put(s)
	h.log.Info("login", zap.String("user", resp.User.Email), zap.Stringer("role", resp.User.Role))
	return c.JSON(http.StatusOK, loginResponse{Token: resp.Token, User: resp.User})
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Drop(bearerToken(c))
	return c.JSON(http.StatusOK, model.Message{Message: "logged out"})
}

func (h *Handler) Me(c echo.Context) error {
	s, ok := session.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	return c.JSON(http.StatusOK, s.User)
}
