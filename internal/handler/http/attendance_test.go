package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
)

type fakeAttendanceService struct {
	checkInReq  *attendance.CheckInRequest
	checkOutReq *attendance.CheckOutRequest
	statusFor   string
	sweepAsOf   time.Time
	err         error
}

func (f *fakeAttendanceService) CheckIn(_ context.Context, req attendance.CheckInRequest) (attendance.CheckInSummary, error) {
	f.checkInReq = &req
	if err := req.Validate(); err != nil {
		return attendance.CheckInSummary{}, err
	}
	if f.err != nil {
		return attendance.CheckInSummary{}, f.err
	}
	return attendance.CheckInSummary{
		AttendanceID: "att-1",
		EmployeeCode: req.EmployeeCode,
		Date:         "2025-03-03",
		Status:       attendance.CheckInInTime,
	}, nil
}

func (f *fakeAttendanceService) CheckOut(_ context.Context, req attendance.CheckOutRequest) (attendance.CheckOutSummary, error) {
	f.checkOutReq = &req
	if err := req.Validate(); err != nil {
		return attendance.CheckOutSummary{}, err
	}
	if f.err != nil {
		return attendance.CheckOutSummary{}, f.err
	}
	return attendance.CheckOutSummary{
		AttendanceID: "att-1",
		EmployeeCode: req.EmployeeCode,
		Status:       attendance.CheckOutInTime,
	}, nil
}

func (f *fakeAttendanceService) Status(_ context.Context, employeeCode string) (attendance.StatusSummary, error) {
	f.statusFor = employeeCode
	if f.err != nil {
		return attendance.StatusSummary{}, f.err
	}
	return attendance.StatusSummary{EmployeeCode: employeeCode, State: attendance.StateNoRecord}, nil
}

func (f *fakeAttendanceService) RunAbsenceSweep(_ context.Context, now time.Time) (attendance.SweepReport, error) {
	f.sweepAsOf = now
	if f.err != nil {
		return attendance.SweepReport{}, f.err
	}
	return attendance.NewSweepReport(now, nil), nil
}

type testServer struct {
	handler http.Handler
	jwt     jwt.Service
	svc     *fakeAttendanceService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	svc := &fakeAttendanceService{}
	router := NewRouter(RouterConfig{
		AppName:        "attendance-engine-test",
		AppVersion:     "test",
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
	}, jwtService, NewAttendanceHandler(svc))
	return &testServer{handler: router, jwt: jwtService, svc: svc}
}

func (s *testServer) token(t *testing.T, employeeCode string, role jwt.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(employeeCode, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

var jakartaPosition = map[string]float64{"latitude": -6.2, "longitude": 106.8}

func TestCheckIn_Handler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), jakartaPosition)

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)
		assert.Equal(t, "Check in successful", env.Message)

		require.NotNil(t, s.svc.checkInReq)
		assert.Equal(t, "E001", s.svc.checkInReq.EmployeeCode)
		require.NotNil(t, s.svc.checkInReq.Latitude)
		assert.InDelta(t, -6.2, *s.svc.checkInReq.Latitude, 1e-9)
	})

	t.Run("employee code in body is ignored", func(t *testing.T) {
		s := newTestServer(t)
		body := map[string]interface{}{"employee_code": "E999", "latitude": -6.2, "longitude": 106.8}
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "E001", s.svc.checkInReq.EmployeeCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), "{not json")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, s.svc.checkInReq)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), map[string]float64{"latitude": 91})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Details, "latitude")
		assert.Contains(t, env.Error.Details, "longitude")
		require.NotNil(t, s.svc.checkInReq)
		assert.Equal(t, "E001", s.svc.checkInReq.EmployeeCode)
		assert.Nil(t, s.svc.checkInReq.Longitude)
	})

	t.Run("missing token", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", "", jakartaPosition)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, s.svc.checkInReq)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		s := newTestServer(t)
		other := jwt.NewJWTService("some-other-secret", handlerTestAccessExp)
		token, _, err := other.GenerateAccessToken("E001", jwt.RoleEmployee)
		require.NoError(t, err)

		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, jakartaPosition)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non access token", func(t *testing.T) {
		s := newTestServer(t)
		_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{
			"employee_code": "E001",
			"type":          "refresh",
			"exp":           time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)

		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, jakartaPosition)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCheckIn_RefusalStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"already recorded", attendance.ErrAlreadyRecorded, http.StatusConflict, "ALREADY_RECORDED"},
		{"no shift", attendance.ErrNoShiftAssigned, http.StatusNotFound, "NO_SHIFT_ASSIGNED"},
		{"holiday", attendance.ErrHolidayClosed, http.StatusForbidden, "HOLIDAY_CLOSED"},
		{"off day", attendance.ErrOffDay, http.StatusForbidden, "OFF_DAY"},
		{"too early", attendance.ErrTooEarly, http.StatusUnprocessableEntity, "TOO_EARLY"},
		{"window closed", attendance.ErrWindowClosed, http.StatusUnprocessableEntity, "WINDOW_CLOSED"},
		{"out of range", &attendance.Error{
			Kind:    attendance.KindOutOfRange,
			Message: "you are 150m away, allowed radius is 100m",
			Details: map[string]string{"distance_meters": "150", "radius_meters": "100"},
		}, http.StatusForbidden, "OUT_OF_RANGE"},
		{"data integrity", attendance.NewDataIntegrityError("office %s not found", "HQ"), http.StatusInternalServerError, "DATA_INTEGRITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.svc.err = tt.err

			rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), jakartaPosition)

			assert.Equal(t, tt.wantCode, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantKind, env.Error.Code)
		})
	}

	t.Run("details are forwarded", func(t *testing.T) {
		s := newTestServer(t)
		s.svc.err = &attendance.Error{
			Kind:    attendance.KindOutOfRange,
			Message: "you are 150m away, allowed radius is 100m",
			Details: map[string]string{"distance_meters": "150", "radius_meters": "100"},
		}

		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), jakartaPosition)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "150", env.Error.Details["distance_meters"])
		assert.Equal(t, "you are 150m away, allowed radius is 100m", env.Error.Message)
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		s := newTestServer(t)
		s.svc.err = errors.New("pq: connection refused")

		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.token(t, "E001", jwt.RoleEmployee), jakartaPosition)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestCheckOut_Handler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-out", s.token(t, "E002", jwt.RoleEmployee), jakartaPosition)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Check out successful", decodeEnvelope(t, rec).Message)
		require.NotNil(t, s.svc.checkOutReq)
		assert.Equal(t, "E002", s.svc.checkOutReq.EmployeeCode)
	})

	t.Run("no active session", func(t *testing.T) {
		s := newTestServer(t)
		s.svc.err = attendance.ErrNoActiveSession

		rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-out", s.token(t, "E002", jwt.RoleEmployee), jakartaPosition)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "NO_ACTIVE_SESSION", decodeEnvelope(t, rec).Error.Code)
	})
}

func TestStatus_Handler(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/attendance/status", s.token(t, "E003", jwt.RoleEmployee), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "E003", s.svc.statusFor)

	var summary attendance.StatusSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &summary))
	assert.Equal(t, attendance.StateNoRecord, summary.State)
}

func TestRunSweep_Handler(t *testing.T) {
	t.Run("employee is forbidden", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/sweep", s.token(t, "E001", jwt.RoleEmployee), nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.True(t, s.svc.sweepAsOf.IsZero())
	})

	t.Run("admin without body sweeps now", func(t *testing.T) {
		s := newTestServer(t)
		before := time.Now()
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/sweep", s.token(t, "ADM1", jwt.RoleAdmin), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, s.svc.sweepAsOf.Before(before))
		assert.False(t, s.svc.sweepAsOf.After(time.Now()))
	})

	t.Run("owner with explicit as_of", func(t *testing.T) {
		s := newTestServer(t)
		asOf := time.Date(2025, time.March, 3, 19, 0, 0, 0, time.FixedZone("WIB", 7*3600))
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/sweep", s.token(t, "OWN1", jwt.RoleOwner),
			map[string]string{"as_of": asOf.Format(time.RFC3339)})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, asOf.Equal(s.svc.sweepAsOf))
	})

	t.Run("future as_of is rejected", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/v1/attendance/sweep", s.token(t, "ADM1", jwt.RoleAdmin),
			map[string]string{"as_of": time.Now().Add(time.Hour).Format(time.RFC3339)})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Error.Details, "as_of")
		assert.True(t, s.svc.sweepAsOf.IsZero())
	})
}

func TestRouter_NotFoundAndHeartbeat(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec).Error.Code)

	rec = s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
