package endpoints

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qpig0218/Rootplanner/internal/providers"
	"github.com/qpig0218/Rootplanner/internal/schedule"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPlanner(client providers.LLMClient, deployment string) *schedule.Planner {
	return schedule.NewPlanner(schedule.Config{
		Client:     client,
		Deployment: deployment,
		Logger:     discardLogger(),
	})
}

func postSchedule(t *testing.T, e *ScheduleEndpoint, body string) *httptest.ResponseRecorder {
	t.Helper()
	_, _, h := e.Route()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type scheduleResponse struct {
	Schedule    json.RawMessage `json:"schedule"`
	RawResponse string          `json:"rawResponse"`
}

func TestScheduleEndpoint_Success(t *testing.T) {
	reply := "以下是行程：\n{\"stops\":[{\"order\":0,\"type\":\"出發點\",\"name\":\"衛生所\"},{\"order\":1,\"type\":\"病人\",\"name\":\"王小明\"}],\"reminders\":[\"攜帶血壓計\"]}\n祝順利"
	mock := providers.NewMockClient()
	mock.ResponseText = reply
	e := &ScheduleEndpoint{Planner: newPlanner(mock, "visit-planner")}

	rec := postSchedule(t, e, `{"caseDetails":"王小明 台北市大安區 10:00 前"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RawResponse != reply {
		t.Errorf("rawResponse = %q, want verbatim reply", resp.RawResponse)
	}

	var got struct {
		Stops []struct {
			Type string `json:"type"`
			Name string `json:"name"`
		} `json:"stops"`
		Reminders []string `json:"reminders"`
	}
	if err := json.Unmarshal(resp.Schedule, &got); err != nil {
		t.Fatalf("schedule decode: %v", err)
	}
	if len(got.Stops) != 2 || got.Stops[1].Name != "王小明" {
		t.Errorf("stops = %+v", got.Stops)
	}
	if len(got.Reminders) != 1 || got.Reminders[0] != "攜帶血壓計" {
		t.Errorf("reminders = %v", got.Reminders)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("upstream calls = %d, want 1", mock.RequestCount())
	}
}

func TestScheduleEndpoint_NullSchedule(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose only", "抱歉，資料不足，無法安排行程。"},
		{"truncated object", `{"stops":[{"order":0`},
		{"malformed object", `{"stops": [1, 2,]}`},
		{"empty reply", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseText = tt.reply
			e := &ScheduleEndpoint{Planner: newPlanner(mock, "visit-planner")}

			rec := postSchedule(t, e, `{"caseDetails":"個案資料"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var raw map[string]json.RawMessage
			if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(raw["schedule"]) != "null" {
				t.Errorf("schedule = %s, want null", raw["schedule"])
			}
			var text string
			if err := json.Unmarshal(raw["rawResponse"], &text); err != nil {
				t.Fatalf("rawResponse decode: %v", err)
			}
			if text != tt.reply {
				t.Errorf("rawResponse = %q, want %q", text, tt.reply)
			}
		})
	}
}

func TestScheduleEndpoint_RawResponseNotEscaped(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "<b>no schedule</b> & more"
	e := &ScheduleEndpoint{Planner: newPlanner(mock, "visit-planner")}

	rec := postSchedule(t, e, `{"caseDetails":"x"}`)
	if !strings.Contains(rec.Body.String(), "<b>no schedule</b> & more") {
		t.Errorf("body = %s, want unescaped reply", rec.Body.String())
	}
}

func TestScheduleEndpoint_Errors(t *testing.T) {
	apiErr := &providers.APIError{Provider: "azure", StatusCode: 401, Message: "Access denied"}

	tests := []struct {
		name        string
		planner     func() (*schedule.Planner, *providers.MockClient)
		body        string
		wantStatus  int
		wantError   string
		wantDetails string
		wantCalls   int64
	}{
		{
			name: "empty details",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       `{"caseDetails":""}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgEmptyCaseDetails,
		},
		{
			name: "whitespace details",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       `{"caseDetails":"  \n\t "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgEmptyCaseDetails,
		},
		{
			name: "missing field",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgEmptyCaseDetails,
		},
		{
			name: "empty body",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantError:  msgEmptyCaseDetails,
		},
		{
			name: "malformed json",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       `{"caseDetails":`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidBody,
		},
		{
			name: "non-string details",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, "visit-planner"), m
			},
			body:       `{"caseDetails":42}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidBody,
		},
		{
			name: "provider not configured",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				return newPlanner(nil, "visit-planner"), nil
			},
			body:       `{"caseDetails":"個案資料"}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgProviderNotConfigured,
		},
		{
			name: "provider not configured beats empty details",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				return newPlanner(nil, "visit-planner"), nil
			},
			body:       ``,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgProviderNotConfigured,
		},
		{
			name: "deployment not configured",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				return newPlanner(m, ""), m
			},
			body:       `{"caseDetails":"個案資料"}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgDeploymentNotConfigured,
		},
		{
			name: "provider failure",
			planner: func() (*schedule.Planner, *providers.MockClient) {
				m := providers.NewMockClient()
				m.ShouldFail = true
				m.Err = apiErr
				return newPlanner(m, "visit-planner"), m
			},
			body:        `{"caseDetails":"個案資料"}`,
			wantStatus:  http.StatusInternalServerError,
			wantError:   msgProviderFailed,
			wantDetails: "Access denied",
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mock := tt.planner()
			e := &ScheduleEndpoint{Planner: p}

			rec := postSchedule(t, e, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if tt.wantDetails != "" && !strings.Contains(resp.Details, tt.wantDetails) {
				t.Errorf("details = %q, want it to contain %q", resp.Details, tt.wantDetails)
			}
			if mock != nil && mock.RequestCount() != tt.wantCalls {
				t.Errorf("upstream calls = %d, want %d", mock.RequestCount(), tt.wantCalls)
			}
		})
	}
}

func TestScheduleEndpoint_BodyTooLarge(t *testing.T) {
	mock := providers.NewMockClient()
	e := &ScheduleEndpoint{Planner: newPlanner(mock, "visit-planner"), MaxBodyBytes: 64}

	body := `{"caseDetails":"` + strings.Repeat("a", 256) + `"}`
	rec := postSchedule(t, e, body)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("upstream calls = %d, want 0", mock.RequestCount())
	}
}

func TestScheduleEndpoint_NilPlanner(t *testing.T) {
	e := &ScheduleEndpoint{}
	rec := postSchedule(t, e, `{"caseDetails":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestScheduleView(t *testing.T) {
	if v := scheduleView(nil); v != nil {
		t.Errorf("scheduleView(nil) = %v, want nil", v)
	}
	if v := scheduleView(json.RawMessage("null")); v != nil {
		t.Errorf("scheduleView(null) = %v, want nil", v)
	}

	typed := scheduleView(json.RawMessage(`{"stops":[{"order":0,"type":"出發點","name":"衛生所"}]}`))
	s, ok := typed.(*schedule.Schedule)
	if !ok {
		t.Fatalf("scheduleView returned %T, want *schedule.Schedule", typed)
	}
	if len(s.Stops) != 1 || s.Stops[0].Name != "衛生所" {
		t.Errorf("stops = %+v", s.Stops)
	}

	generic := scheduleView(json.RawMessage(`{"stops":"not a list"}`))
	if _, ok := generic.(map[string]any); !ok {
		t.Errorf("scheduleView returned %T, want map[string]any", generic)
	}
}
