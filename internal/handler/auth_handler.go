package handler

import (
	"net/http"

	"github.com/Eursukkul/event-booking/internal/dto"
	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, authResponse(user, token))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, authResponse(user, token))
}

func authResponse(user *models.User, token string) dto.AuthResponse {
	return dto.AuthResponse{
		Token: token,
		User:  *dto.ToUserSummary(user),
		Role:  user.Role,
	}
}
