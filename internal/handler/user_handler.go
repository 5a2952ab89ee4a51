package handler

import (
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"thingapi/internal/auth"
	"thingapi/internal/model"
	"thingapi/internal/repository"
)

type UserHandler struct {
	repo repository.UserRepositoryInterface
}

func NewUserHandler(repo repository.UserRepositoryInterface) *UserHandler {
	return &UserHandler{repo: repo}
}

type UserRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// UserResponse is the full representation. The password hash is never
// serialized.
type UserResponse struct {
	ID           string     `json:"id"`
	EmailAddress string     `json:"email_address"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// UserListItem is the abbreviated representation used in collections.
type UserListItem struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

func userResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		EmailAddress: user.EmailAddress,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// List returns users matching the optional email_address substring filter,
// sorted ascending by the requested field. An empty result is 204.
func (h *UserHandler) List(c *gin.Context) {
	q := repository.UserQuery{
		EmailContains: c.Query("email_address"),
		SortBy:        c.Query("sort"),
	}

	users, err := h.repo.List(c.Request.Context(), q)
	if errors.Is(err, repository.ErrInvalidSortField) {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	if len(users) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	if wantsCSV(c) {
		h.writeCSV(c, users)
		return
	}

	items := make([]UserListItem, len(users))
	for i, user := range users {
		items[i] = UserListItem{ID: user.ID.String(), EmailAddress: user.EmailAddress}
	}
	c.JSON(http.StatusOK, items)
}

func (h *UserHandler) writeCSV(c *gin.Context, users []model.User) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"ID", "EMAIL_ADDRESS", "CREATED_AT", "UPDATED_AT"})
	w.Flush()

	// One flush per row so the response streams instead of buffering.
	for _, user := range users {
		w.Write([]string{
			user.ID.String(),
			user.EmailAddress,
			csvTimestamp(user.CreatedAt),
			csvNullableTimestamp(user.UpdatedAt),
		})
		w.Flush()
	}
}

// Create registers a new user. The email address must be unique after
// normalization; the password is stored only as a bcrypt hash.
func (h *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, bindingErrorDescription(err))
		return
	}

	existing, err := h.repo.FindByEmail(c.Request.Context(), req.EmailAddress)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		abortError(c, http.StatusConflict, "Email address already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := model.NewUser(req.EmailAddress, hash)
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			abortError(c, http.StatusConflict, "Email address already registered")
			return
		}
		abortError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.Header("Location", "/v1/users/"+user.ID.String())
	c.JSON(http.StatusCreated, userResponse(user))
}

// GetByID returns the full representation for a user.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrUserNotFound) {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// Update replaces both mutable fields, email address and password.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, bindingErrorDescription(err))
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrUserNotFound) {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	normalized := model.NormalizeEmail(req.EmailAddress)
	if normalized != user.EmailAddress {
		existing, err := h.repo.FindByEmail(c.Request.Context(), normalized)
		if err != nil {
			abortError(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
		if existing != nil {
			abortError(c, http.StatusConflict, "Email address already registered")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	user.EmailAddress = normalized
	user.PasswordHash = hash

	if err := h.repo.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			abortError(c, http.StatusConflict, "Email address already registered")
			return
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			abortError(c, http.StatusNotFound, "User not found")
			return
		}
		abortError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// Delete hard-deletes a user; the database cascades to owned things.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			abortError(c, http.StatusNotFound, "User not found")
			return
		}
		abortError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
