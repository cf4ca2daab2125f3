package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockService is a mock implementation of the notification Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateFromTrigger(ctx context.Context, t Trigger) (*Notification, error) {
	args := m.Called(ctx, t)
	if n, ok := args.Get(0).(*Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) GetNotificationsForUser(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, recipientID, page, pageSize)
	var notifications []Notification
	if n, ok := args.Get(0).([]Notification); ok {
		notifications = n
	}
	var pagination *common.Pagination
	if p, ok := args.Get(1).(*common.Pagination); ok {
		pagination = p
	}
	return notifications, pagination, args.Error(2)
}

func (m *MockService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) MarkNotificationAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockService) MarkAllUserNotificationsAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

// setupTestRouter wires the handler behind a stub auth middleware that injects
// userID, mirroring what the Firebase middleware does in production.
func setupTestRouter(service Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/api/v1/notifications")
	group.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(common.UserIDKey, userID)
		}
		c.Next()
	})
	NewHandler(service, zap.NewNop()).RegisterRoutes(group)
	return router
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GetNotifications(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		sentAt := time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)
		notifications := []Notification{{
			ID:          uuid.New(),
			RecipientID: userID,
			Type:        TypeEventCancelled,
			Title:       "Ride cancelled",
			Message:     "\"Saturday Ride\" has been cancelled.",
			SentAt:      &sentAt,
		}}
		mockSvc.On("GetNotificationsForUser", mock.Anything, userID, 1, common.DefaultPageSize).
			Return(notifications, common.NewPagination(1, 1, common.DefaultPageSize), nil).Once()

		w := performRequest(router, http.MethodGet, "/api/v1/notifications")

		assert.Equal(t, http.StatusOK, w.Code)
		var body common.PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, int64(1), body.Pagination.TotalItems)
		mockSvc.AssertExpectations(t)
	})

	t.Run("pagination params forwarded", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		mockSvc.On("GetNotificationsForUser", mock.Anything, userID, 3, 5).
			Return([]Notification{}, common.NewPagination(11, 3, 5), nil).Once()

		w := performRequest(router, http.MethodGet, "/api/v1/notifications?page=3&page_size=5")

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing user id is unauthorized", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, uuid.Nil)

		w := performRequest(router, http.MethodGet, "/api/v1/notifications")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockSvc.AssertNotCalled(t, "GetNotificationsForUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service failure maps to 500", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		mockSvc.On("GetNotificationsForUser", mock.Anything, userID, 1, common.DefaultPageSize).
			Return(nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")).Once()

		w := performRequest(router, http.MethodGet, "/api/v1/notifications")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_GetUnreadCount(t *testing.T) {
	userID := uuid.New()
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, userID)

	mockSvc.On("CountUnread", mock.Anything, userID).Return(int64(4), nil).Once()

	w := performRequest(router, http.MethodGet, "/api/v1/notifications/unread-count")

	assert.Equal(t, http.StatusOK, w.Code)
	var body common.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), data["unread_count"])
	mockSvc.AssertExpectations(t)
}

func TestHandler_MarkNotificationAsRead(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		mockSvc.On("MarkNotificationAsRead", mock.Anything, notificationID, userID).Return(nil).Once()

		w := performRequest(router, http.MethodPatch, "/api/v1/notifications/"+notificationID.String()+"/read")

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id is a bad request", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		w := performRequest(router, http.MethodPatch, "/api/v1/notifications/not-a-uuid/read")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "MarkNotificationAsRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not owned maps to 404", func(t *testing.T) {
		mockSvc := new(MockService)
		router := setupTestRouter(mockSvc, userID)

		mockSvc.On("MarkNotificationAsRead", mock.Anything, notificationID, userID).
			Return(common.ErrNotFound.WithDetails("Notification not found or not owned by user.")).Once()

		w := performRequest(router, http.MethodPatch, "/api/v1/notifications/"+notificationID.String()+"/read")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_MarkAllNotificationsAsRead(t *testing.T) {
	userID := uuid.New()
	mockSvc := new(MockService)
	router := setupTestRouter(mockSvc, userID)

	mockSvc.On("MarkAllUserNotificationsAsRead", mock.Anything, userID).Return(int64(7), nil).Once()

	w := performRequest(router, http.MethodPatch, "/api/v1/notifications/read-all")

	assert.Equal(t, http.StatusOK, w.Code)
	var body common.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), data["updated_count"])
	mockSvc.AssertExpectations(t)
}
