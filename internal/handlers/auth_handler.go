package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/models"
	"leadcrm/internal/services"
)

type AuthHandler struct {
	auth services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Signup godoc
// @Summary      Register a user
// @Description  Creates an account with the default sales role. Accepts a form or a JSON body.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        credentials  body      models.Credentials  true  "Email and password"
// @Success      200          {object}  handlers.MessageResponse
// @Failure      400          {object}  handlers.ErrorResponse
// @Failure      500          {object}  handlers.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBind(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, MessageResponse{Message: "User registered successfully"})
	case errors.Is(err, apperr.ErrConflict):
		abortDetail(c, http.StatusBadRequest, "User already exists")
	default:
		handleError(c, h.log, err, "User not found")
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a bearer token. Accepts a form or a JSON body.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        credentials  body      models.Credentials  true  "Email and password"
// @Success      200          {object}  models.TokenResponse
// @Failure      400          {object}  handlers.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBind(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			abortDetail(c, http.StatusBadRequest, "Invalid email or password")
			return
		}
		handleError(c, h.log, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.MeResponse
// @Failure      401  {object}  handlers.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.MeResponse{Email: who.Email, Role: authz.RoleName(who.RoleID)})
}
