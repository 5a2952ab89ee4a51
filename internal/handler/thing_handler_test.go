package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thingapi/internal/handler"
	"thingapi/internal/middleware"
	"thingapi/internal/model"
	"thingapi/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockThingRepository struct {
	mock.Mock
}

func (m *MockThingRepository) Create(ctx context.Context, thing *model.Thing) error {
	args := m.Called(ctx, thing)
	return args.Error(0)
}

func (m *MockThingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Thing, error) {
	args := m.Called(ctx, id)
	thing := args.Get(0)
	if thing == nil {
		return nil, args.Error(1)
	}
	return thing.(*model.Thing), args.Error(1)
}

func (m *MockThingRepository) List(ctx context.Context, q repository.ThingQuery) ([]model.Thing, error) {
	args := m.Called(ctx, q)
	things := args.Get(0)
	if things == nil {
		return nil, args.Error(1)
	}
	return things.([]model.Thing), args.Error(1)
}

func (m *MockThingRepository) Update(ctx context.Context, thing *model.Thing) error {
	args := m.Called(ctx, thing)
	return args.Error(0)
}

func (m *MockThingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// setupThingTest wires the handler behind a stub identity, standing in for
// the JWT middleware.
func setupThingTest(userID uuid.UUID) (*gin.Engine, *MockThingRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockThingRepository)
	thingHandler := handler.NewThingHandler(mockRepo)

	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})

	r.GET("/v1/things", thingHandler.List)
	r.POST("/v1/things", thingHandler.Create)
	r.GET("/v1/things/:id", thingHandler.GetByID)
	r.PUT("/v1/things/:id", thingHandler.Update)
	r.DELETE("/v1/things/:id", thingHandler.Delete)

	return r, mockRepo
}

func TestCreateThing_NormalizesName(t *testing.T) {
	// Arrange
	ownerID := uuid.New()
	router, mockRepo := setupThingTest(ownerID)

	var created *model.Thing
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Thing")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Thing)
		}).
		Return(nil)

	body := []byte(`{"name": " red box ", "colour": "red"}`)
	req, _ := http.NewRequest("POST", "/v1/things", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.NotNil(t, created)
	assert.Equal(t, "Red Box", created.Name)
	assert.Equal(t, ownerID, created.UserID)
	assert.Equal(t, "/v1/things/"+created.ID.String(), resp.Header().Get("Location"))

	var response handler.ThingResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Red Box", response.Name)
	assert.Equal(t, ownerID.String(), response.UserID)
	assert.Nil(t, response.UpdatedAt)
}

func TestCreateThing_MissingColour(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	body := []byte(`{"name": "red box"}`)
	req, _ := http.NewRequest("POST", "/v1/things", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Colour")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateThing_NameTooLong(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	body := []byte(`{"name": "a name well beyond the thirty-two character limit", "colour": "red"}`)
	req, _ := http.NewRequest("POST", "/v1/things", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Name")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateThing_Unauthenticated(t *testing.T) {
	// Arrange: no identity in the context
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockThingRepository)
	thingHandler := handler.NewThingHandler(mockRepo)
	r.POST("/v1/things", thingHandler.Create)

	body := []byte(`{"name": "red box", "colour": "red"}`)
	req, _ := http.NewRequest("POST", "/v1/things", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListThings_Empty(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	mockRepo.On("List", mock.Anything, repository.ThingQuery{Colour: "chartreuse"}).
		Return([]model.Thing{}, nil)

	req, _ := http.NewRequest("GET", "/v1/things?colour=chartreuse", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())
}

func TestListThings_JSON(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	things := []model.Thing{
		*model.NewThing(uuid.New(), "Blue Cube", "blue"),
		*model.NewThing(uuid.New(), "Red Box", "red"),
	}
	mockRepo.On("List", mock.Anything, repository.ThingQuery{}).Return(things, nil)

	req, _ := http.NewRequest("GET", "/v1/things", nil)
	req.Header.Set("Accept", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert: list items omit owner and timestamps
	assert.Equal(t, http.StatusOK, resp.Code)

	var items []handler.ThingListItem
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "Blue Cube", items[0].Name)
	assert.NotContains(t, resp.Body.String(), "user_id")
	assert.NotContains(t, resp.Body.String(), "created_at")
}

func TestListThings_CSV(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	thing := model.NewThing(uuid.New(), "Red Box", "red")
	thing.CreatedAt = time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	mockRepo.On("List", mock.Anything, mock.Anything).Return([]model.Thing{*thing}, nil)

	req, _ := http.NewRequest("GET", "/v1/things", nil)
	req.Header.Set("Accept", "text/csv")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "things.csv")

	body := resp.Body.String()
	assert.Contains(t, body, "ID,NAME,COLOUR,CREATED_AT,UPDATED_AT")
	assert.Contains(t, body, "Red Box,red,2023-01-02T03:04:05Z,\n")
}

func TestListThings_InvalidSortField(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	mockRepo.On("List", mock.Anything, repository.ThingQuery{SortBy: "owner"}).
		Return(nil, repository.ErrInvalidSortField)

	req, _ := http.NewRequest("GET", "/v1/things?sort=owner", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response model.ErrorResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Bad Request", response.Name)
}

func TestGetThing_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	thing := model.NewThing(uuid.New(), "Red Box", "red")
	mockRepo.On("GetByID", mock.Anything, thing.ID).Return(thing, nil)

	req, _ := http.NewRequest("GET", "/v1/things/"+thing.ID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert: the full representation includes the owner
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.ThingResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, thing.ID.String(), response.ID)
	assert.Equal(t, thing.UserID.String(), response.UserID)
}

func TestGetThing_NotFound(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrThingNotFound)

	req, _ := http.NewRequest("GET", "/v1/things/"+id.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateThing_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	thing := model.NewThing(uuid.New(), "Red Box", "red")
	mockRepo.On("GetByID", mock.Anything, thing.ID).Return(thing, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Thing")).Return(nil)

	body := []byte(`{"name": " blue cube ", "colour": " blue "}`)
	req, _ := http.NewRequest("PUT", "/v1/things/"+thing.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.ThingResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Blue Cube", response.Name)
	assert.Equal(t, "blue", response.Colour)

	mockRepo.AssertExpectations(t)
}

func TestDeleteThing_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	id := uuid.New()
	mockRepo.On("Delete", mock.Anything, id).Return(nil)

	req, _ := http.NewRequest("DELETE", "/v1/things/"+id.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())
}

func TestDeleteThing_AlreadyDeleted(t *testing.T) {
	// Arrange
	router, mockRepo := setupThingTest(uuid.New())

	id := uuid.New()
	mockRepo.On("Delete", mock.Anything, id).Return(repository.ErrThingNotFound)

	req, _ := http.NewRequest("DELETE", "/v1/things/"+id.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
