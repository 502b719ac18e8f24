package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/scheduler-api/internal/dto"
	"github.com/acadsync/scheduler-api/internal/models"
	appErrors "github.com/acadsync/scheduler-api/pkg/errors"
)

type timetableMock struct {
	capturedStatus dto.UpdateTimetableStatusRequest
	err            error
}

func (m *timetableMock) Get(_ context.Context, id string) (*models.Timetable, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Timetable{ID: id, Status: models.TimetableStatusDraft}, nil
}

func (m *timetableMock) UpdateStatus(_ context.Context, id string, req dto.UpdateTimetableStatusRequest) (*models.Timetable, error) {
	m.capturedStatus = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Timetable{ID: id, Status: req.Status}, nil
}

func (m *timetableMock) ReplaceSessions(_ context.Context, id string, req dto.ReplaceSessionsRequest) (*models.Timetable, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Timetable{ID: id, Status: models.TimetableStatusDraft, Sessions: req.Sessions}, nil
}

func TestTimetableHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(&timetableMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetables/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.Timetable `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "tt-1", envelope.Data.ID)
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(&timetableMock{err: appErrors.Clone(appErrors.ErrNotFound, "timetable not found")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetables/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func putJSONWithID(t *testing.T, h gin.HandlerFunc, path, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: id}}
	h(c)
	return w
}

func TestTimetableHandlerUpdateStatus(t *testing.T) {
	mock := &timetableMock{}
	h := NewTimetableHandler(mock)

	w := putJSONWithID(t, h.UpdateStatus, "/timetables/tt-1/status", "tt-1", `{"status":"ACTIVE"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.TimetableStatusActive, mock.capturedStatus.Status)
}

func TestTimetableHandlerUpdateStatusBadBody(t *testing.T) {
	h := NewTimetableHandler(&timetableMock{})

	w := putJSONWithID(t, h.UpdateStatus, "/timetables/tt-1/status", "tt-1", `{"status":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerReplaceSessions(t *testing.T) {
	h := NewTimetableHandler(&timetableMock{})

	body := `{"sessions":[{"id":"s-1","course_id":"math","teacher_id":"teacher-1","room_id":"room-1","day_of_week":"MONDAY","start_time":"09:00","end_time":"10:00"}]}`
	w := putJSONWithID(t, h.ReplaceSessions, "/timetables/tt-1/sessions", "tt-1", body)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.Timetable `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sessions, 1)
	require.Equal(t, "teacher-1", envelope.Data.Sessions[0].TeacherID)
}
