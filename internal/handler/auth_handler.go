package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thingapi/internal/auth"
	"thingapi/internal/model"
	"thingapi/internal/repository"
)

type AuthHandler struct {
	users  repository.UserRepositoryInterface
	tokens *auth.TokenService
}

func NewAuthHandler(users repository.UserRepositoryInterface, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// GetToken exchanges Basic credentials for a bearer token.
func (h *AuthHandler) GetToken(c *gin.Context) {
	emailAddress, password, ok := c.Request.BasicAuth()
	if !ok {
		h.challenge(c)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), emailAddress)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to authenticate")
		return
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.challenge(c)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{Token: token})
}

func (h *AuthHandler) challenge(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="thingapi"`)
	abortError(c, http.StatusUnauthorized, "Invalid email address or password")
}
