package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/domain"
	"beauty-api/internal/service"
)

// AuthHandler mantiene dependencias para alta, ingreso y perfil.
type AuthHandler struct {
	logger   *zap.Logger
	identity service.IdentityProvider
	photos   *service.PhotoService
}

func NewAuthHandler(logger *zap.Logger, identity service.IdentityProvider, photos *service.PhotoService) *AuthHandler {
	return &AuthHandler{logger: logger, identity: identity, photos: photos}
}

// SignUp maneja POST /auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req service.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "sign-up", err)
		return
	}
	session, err := h.identity.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "sign-up", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}
	h.signIn(c, service.SignInInput{Method: service.AuthMethodPassword, Email: req.Email, Password: req.Password})
}

// Federated maneja POST /auth/federated; el id token del proveedor se verifica en el servicio.
func (h *AuthHandler) Federated(c *gin.Context) {
	var req service.FederatedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "federated", err)
		return
	}
	h.signIn(c, service.SignInInput{Method: service.AuthMethodFederated, Federated: req})
}

// Guest maneja POST /auth/guest.
func (h *AuthHandler) Guest(c *gin.Context) {
	h.signIn(c, service.SignInInput{Method: service.AuthMethodGuest})
}

func (h *AuthHandler) signIn(c *gin.Context, input service.SignInInput) {
	session, err := h.identity.SignIn(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "sign-in", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "refresh", err)
		return
	}
	tokens, err := h.identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "logout", err)
		return
	}
	if err := h.identity.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Debug("logout with invalid token", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// GetProfile maneja GET /profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	profile, err := h.identity.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// SaveProfile maneja POST y PUT /profile.
func (h *AuthHandler) SaveProfile(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if claims.Guest {
		c.JSON(http.StatusForbidden, gin.H{"error": "guests cannot have a profile"})
		return
	}
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Birthday string `json:"birthday"`
		PhotoURL string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "save profile", err)
		return
	}

	profile := domain.UserProfile{
		UserID:   claims.UserID,
		Username: req.Username,
		Email:    req.Email,
		Birthday: req.Birthday,
		PhotoURL: req.PhotoURL,
	}
	if existing, err := h.identity.GetProfile(c.Request.Context(), claims.UserID); err == nil {
		profile.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, service.ErrProfileNotFound) {
		respondError(c, h.logger, "save profile", err)
		return
	}

	saved, err := h.identity.SaveProfile(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, "save profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": saved})
}

// UploadPhoto maneja PUT /profile/photo con la imagen como data URI.
func (h *AuthHandler) UploadPhoto(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := bindImageJSON(c, h.photos.MaxBytes(), &req); err != nil {
		bindFailed(c, h.logger, "upload photo", err)
		return
	}
	url, err := h.photos.Upload(c.Request.Context(), claims.UserID, req.Image)
	if err != nil {
		respondError(c, h.logger, "upload photo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
