package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/educonnect/internal/bootstrap"
	"anoa.com/educonnect/internal/config"
	"anoa.com/educonnect/internal/testutil"
	"anoa.com/educonnect/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, bootstrap.SeedAdminUser(db))

	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:           "test",
		AllowedOrigins:   []string{"http://localhost:3000"},
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		MaxUploadBytes:   1 << 20,
		LoginMaxAttempts: 5,
		LoginLockout:     time.Minute,
	}
	srv, err := NewServer(cfg, db, nil, fs, nil)
	require.NoError(t, err)
	return &client{t: t, handler: srv.Handler()}
}

func (c *client) do(method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c *client) json(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(payload)
	}
	return c.do(method, path, token, "application/json", r)
}

func (c *client) form(path, token string, fields map[string]string, fileName, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(c.t, err)
		_, err = part.Write([]byte(content))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, path, token, mw.FormDataContentType(), &buf)
}

func (c *client) login(identifier, password string) string {
	c.t.Helper()
	w := c.json(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": identifier, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type idData struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", "", "", nil).Code)

	w := c.do(http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "educonnect_")
}

func TestAcademicWorkflow(t *testing.T) {
	c := newClient(t)
	adminToken := c.login("admin", "admin123")

	w := c.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"student_number": "S001", "name": "Alice", "password": "secret1", "confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	studentID := decode[struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}](t, w).User.ID
	studentToken := c.login("S001", "secret1")

	t.Run("role guards", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, c.json(http.MethodGet, "/api/admin/dashboard", "", nil).Code)
		assert.Equal(t, http.StatusForbidden, c.json(http.MethodGet, "/api/admin/dashboard", studentToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, c.json(http.MethodGet, "/api/teacher/dashboard", studentToken, nil).Code)
		assert.Equal(t, http.StatusOK, c.json(http.MethodGet, "/api/admin/dashboard", adminToken, nil).Code)
	})

	w = c.json(http.MethodPost, "/api/admin/courses", adminToken, map[string]string{"name": "Physics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := decode[idData](t, w).Data.ID

	w = c.json(http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name": "Bob", "role": "teacher", "username": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	teacherToken := c.login("bob", "password123")

	w = c.json(http.MethodPost, "/api/admin/enrollments", adminToken, map[string]string{"student_id": studentID, "course_id": courseID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = c.json(http.MethodPost, "/api/admin/enrollments", adminToken, map[string]string{"student_id": studentID, "course_id": courseID})
	assert.Equal(t, http.StatusConflict, w.Code)

	due := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	w = c.form("/api/teacher/assignments", teacherToken, map[string]string{
		"title": "Essay 1", "due_date": due, "course_id": courseID, "max_marks": "100",
	}, "", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
		Notified int `json:"notified"`
	}](t, w)
	assert.Equal(t, 1, created.Notified)
	assignmentID := created.Data.ID

	w = c.json(http.MethodGet, "/api/notifications/unread-count", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[struct {
		Count int64 `json:"count"`
	}](t, w).Count)

	submitPath := fmt.Sprintf("/api/student/assignments/%s/submit", assignmentID)
	w = c.form(submitPath, studentToken, map[string]string{"notes": "done"}, "essay.exe", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.form(submitPath, studentToken, map[string]string{"notes": "done"}, "essay.pdf", "my essay")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	submissionID := decode[idData](t, w).Data.ID

	w = c.form(submitPath, studentToken, nil, "again.pdf", "x")
	assert.Equal(t, http.StatusConflict, w.Code)

	t.Run("download", func(t *testing.T) {
		w := c.do(http.MethodGet, fmt.Sprintf("/api/student/submissions/%s/download?token=%s", submissionID, studentToken), "", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "my essay", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "submission_Essay 1.pdf")
	})

	gradePath := fmt.Sprintf("/api/teacher/submissions/%s/grade", submissionID)
	w = c.json(http.MethodPost, gradePath, teacherToken, map[string]any{"marks": 105})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.json(http.MethodPost, gradePath, teacherToken, map[string]any{"marks": 85, "feedback": "Good"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.json(http.MethodGet, "/api/student/grades", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	grades := decode[struct {
		Data []struct {
			Status string   `json:"status"`
			Marks  *float64 `json:"marks"`
		} `json:"data"`
	}](t, w).Data
	require.Len(t, grades, 1)
	assert.Equal(t, "graded", grades[0].Status)
	require.NotNil(t, grades[0].Marks)
	assert.Equal(t, 85.0, *grades[0].Marks)

	w = c.json(http.MethodGet, fmt.Sprintf("/api/teacher/courses/%s/gradebook", courseID), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average":85`)

	t.Run("course with content cannot be deleted", func(t *testing.T) {
		w := c.json(http.MethodDelete, "/api/admin/courses/"+courseID, adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("issues", func(t *testing.T) {
		w := c.json(http.MethodPost, "/api/issues", studentToken, map[string]string{"description": "upload is slow"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		issueID := decode[idData](t, w).Data.ID

		w = c.json(http.MethodPut, "/api/admin/issues/"+issueID+"/resolve", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), `"status":"resolved"`))
	})

	t.Run("search is unavailable without a backend", func(t *testing.T) {
		w := c.json(http.MethodGet, "/api/student/search-token", studentToken, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
