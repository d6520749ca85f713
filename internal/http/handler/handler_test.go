package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"testlab/internal/model"
	"testlab/internal/service"
	serviceMocks "testlab/internal/service/mocks"
	"testlab/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListUsers(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/users", ListUsers(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.UserListResult{
			Items: []model.User{testutil.UserAlice()},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.UserListResult
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Alice", result.Items[0].Name)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users?offset=xyz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("boom")).Once()

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestRegisterUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Post("/users", RegisterUser(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("created", func(t *testing.T) {
		alice := testutil.UserAlice()
		mockSvc.On("Register", mock.Anything, service.RegisterInput{
			Name: "Alice", Age: 30, Email: "alice@example.com",
		}).Return(&alice, nil).Once()

		resp := post(`{"name":"Alice","age":30,"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var u model.User
		json.NewDecoder(resp.Body).Decode(&u)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, 30, u.Age)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := post(`{"name":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("validation errors map to 400", func(t *testing.T) {
		tests := []struct {
			name     string
			svcErr   error
			wantCode string
		}{
			{name: "missing name", svcErr: service.ErrNameRequired, wantCode: "NAME_REQUIRED"},
			{name: "bad age", svcErr: service.ErrInvalidAge, wantCode: "INVALID_AGE"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, tt.svcErr).Once()

				resp := post(`{"name":"x","age":1}`)

				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
			})
		}
	})

	t.Run("service error maps to 500", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		resp := post(`{"name":"Alice","age":30}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/users/:id", GetUser(mockSvc))

	validID := uuid.New().String()

	t.Run("found", func(t *testing.T) {
		alice := testutil.UserAlice()
		mockSvc.On("Get", mock.Anything, validID).Return(&alice, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+validID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var u model.User
		json.NewDecoder(resp.Body).Decode(&u)
		assert.Equal(t, "Alice", u.Name)
	})

	t.Run("invalid id format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, validID).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+validID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Delete("/users/:id", DeleteUser(mockSvc))

	validID := uuid.New().String()

	t.Run("deleted", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, validID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+validID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("invalid id format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/users/42", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, validID).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+validID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func newAvatarRequest(t *testing.T, id string, field string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pngbytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/"+id+"/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Post("/users/:id/avatar", UploadAvatar(mockSvc))

	validID := uuid.New().String()

	t.Run("uploaded", func(t *testing.T) {
		alice := testutil.UserAlice()
		alice.AvatarPath = "avatars/obj.png"
		mockSvc.On("UploadAvatar", mock.Anything, validID, mock.Anything, mock.Anything, int64(8)).
			Return(&alice, nil).Once()

		resp, _ := app.Test(newAvatarRequest(t, validID, "avatar"))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var u model.User
		json.NewDecoder(resp.Body).Decode(&u)
		assert.Equal(t, "avatars/obj.png", u.AvatarPath)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file field", func(t *testing.T) {
		resp, _ := app.Test(newAvatarRequest(t, validID, "wrong-field"))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id format", func(t *testing.T) {
		resp, _ := app.Test(newAvatarRequest(t, "nope", "avatar"))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("user not found", func(t *testing.T) {
		mockSvc.On("UploadAvatar", mock.Anything, validID, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(newAvatarRequest(t, validID, "avatar"))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetAvatar(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/users/:id/avatar", GetAvatar(mockSvc))

	validID := uuid.New().String()

	t.Run("redirects to resolved url", func(t *testing.T) {
		mockSvc.On("AvatarURL", mock.Anything, validID).
			Return("https://minio.local/presigned", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+validID+"/avatar", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://minio.local/presigned", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/nope/avatar", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("no avatar", func(t *testing.T) {
		mockSvc.On("AvatarURL", mock.Anything, validID).
			Return("", service.ErrNoAvatar).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+validID+"/avatar", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NO_AVATAR", decodeError(t, resp).Error.Code)
	})

	t.Run("user not found", func(t *testing.T) {
		mockSvc.On("AvatarURL", mock.Anything, validID).
			Return("", service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+validID+"/avatar", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})
	app.Get("/bad", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "nope")
	})

	t.Run("unknown error becomes 500", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("fiber error keeps its status", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bad", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown route becomes standardized 404", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestRegisterRoutes(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	RegisterRoutes(app, db, new(serviceMocks.MockUserService))

	// Unregistered methods must 405, registered paths must not 404.
	req := httptest.NewRequest(http.MethodPut, "/users", nil)
	resp, _ := app.Test(req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
