package handler

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"thingapi/internal/middleware"
	"thingapi/internal/model"
	"thingapi/internal/repository"
)

type ThingHandler struct {
	repo repository.ThingRepositoryInterface
}

func NewThingHandler(repo repository.ThingRepositoryInterface) *ThingHandler {
	return &ThingHandler{repo: repo}
}

type ThingRequest struct {
	Name   string `json:"name" binding:"required,max=32"`
	Colour string `json:"colour" binding:"required"`
}

type ThingResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Colour    string     `json:"colour"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// ThingListItem omits timestamps and the owner id in collections.
type ThingListItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Colour string `json:"colour"`
}

func thingResponse(thing *model.Thing) ThingResponse {
	return ThingResponse{
		ID:        thing.ID.String(),
		UserID:    thing.UserID.String(),
		Name:      thing.Name,
		Colour:    thing.Colour,
		CreatedAt: thing.CreatedAt,
		UpdatedAt: thing.UpdatedAt,
	}
}

// authenticatedUser pulls the user id stored by the auth middleware.
func authenticatedUser(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// List returns things matching the optional name substring and colour
// equality filters, sorted ascending. An empty result is 204.
func (h *ThingHandler) List(c *gin.Context) {
	q := repository.ThingQuery{
		NameContains: c.Query("name"),
		Colour:       c.Query("colour"),
		SortBy:       c.Query("sort"),
	}

	things, err := h.repo.List(c.Request.Context(), q)
	if errors.Is(err, repository.ErrInvalidSortField) {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to retrieve things")
		return
	}

	if len(things) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	if wantsCSV(c) {
		h.writeCSV(c, things)
		return
	}

	items := make([]ThingListItem, len(things))
	for i, thing := range things {
		items[i] = ThingListItem{ID: thing.ID.String(), Name: thing.Name, Colour: thing.Colour}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ThingHandler) writeCSV(c *gin.Context, things []model.Thing) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="things.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"ID", "NAME", "COLOUR", "CREATED_AT", "UPDATED_AT"})
	w.Flush()

	for _, thing := range things {
		w.Write([]string{
			thing.ID.String(),
			thing.Name,
			thing.Colour,
			csvTimestamp(thing.CreatedAt),
			csvNullableTimestamp(thing.UpdatedAt),
		})
		w.Flush()
	}
}

// Create makes a new thing owned by the authenticated user.
func (h *ThingHandler) Create(c *gin.Context) {
	ownerID, ok := authenticatedUser(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ThingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, bindingErrorDescription(err))
		return
	}

	thing := model.NewThing(ownerID, req.Name, req.Colour)
	if err := h.repo.Create(c.Request.Context(), thing); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create thing")
		return
	}

	c.Header("Location", "/v1/things/"+thing.ID.String())
	c.JSON(http.StatusCreated, thingResponse(thing))
}

// GetByID returns the full representation for a thing.
func (h *ThingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "Thing not found")
		return
	}

	thing, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrThingNotFound) {
		abortError(c, http.StatusNotFound, "Thing not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to retrieve thing")
		return
	}

	c.JSON(http.StatusOK, thingResponse(thing))
}

// Update replaces the thing's mutable fields. Ownership is fixed at
// creation and never changes.
func (h *ThingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "Thing not found")
		return
	}

	var req ThingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, bindingErrorDescription(err))
		return
	}

	thing, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrThingNotFound) {
		abortError(c, http.StatusNotFound, "Thing not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update thing")
		return
	}

	thing.Name = model.NormalizeThingName(req.Name)
	thing.Colour = strings.TrimSpace(req.Colour)

	if err := h.repo.Update(c.Request.Context(), thing); err != nil {
		if errors.Is(err, repository.ErrThingNotFound) {
			abortError(c, http.StatusNotFound, "Thing not found")
			return
		}
		abortError(c, http.StatusInternalServerError, "Failed to update thing")
		return
	}

	c.JSON(http.StatusOK, thingResponse(thing))
}

// Delete hard-deletes a thing.
func (h *ThingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortError(c, http.StatusNotFound, "Thing not found")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrThingNotFound) {
			abortError(c, http.StatusNotFound, "Thing not found")
			return
		}
		abortError(c, http.StatusInternalServerError, "Failed to delete thing")
		return
	}

	c.Status(http.StatusNoContent)
}
