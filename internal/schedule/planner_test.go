package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/qpig0218/Rootplanner/internal/providers"
	"github.com/qpig0218/Rootplanner/internal/svcctx"
)

const validReply = `以下是排程結果：
{
  "date": "2025-03-01",
  "stops": [
    {"order": 0, "type": "出發點", "name": "衛生所", "address": "台北市中正區", "time": {"depart": "08:30"}},
    {"order": 1, "type": "病人", "name": "王小明", "note": "10:00 前", "address": "台北市大安區", "time": {"arrive": "09:00", "visit_minutes": 30, "leave": "09:30"}}
  ],
  "route_map_url": "https://maps.google.com/?q=route",
  "reminders": ["攜帶血壓計"],
  "extra_field": {"kept": true}
}
祝順利。`

func newTestPlanner(t *testing.T, client providers.LLMClient) *Planner {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return NewPlanner(Config{
		Client:     client,
		Deployment: "visit-planner",
		Validator:  v,
	})
}

func TestPlanPreconditions(t *testing.T) {
	t.Run("no client", func(t *testing.T) {
		p := NewPlanner(Config{Deployment: "d"})
		_, err := p.Plan(context.Background(), "details")
		if !errors.Is(err, ErrProviderNotConfigured) {
			t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
		}
		if !errors.Is(err, ErrNotConfigured) {
			t.Error("provider error should wrap ErrNotConfigured")
		}
	})

	t.Run("no deployment", func(t *testing.T) {
		mock := providers.NewMockClient()
		p := NewPlanner(Config{Client: mock, Deployment: "  "})
		_, err := p.Plan(context.Background(), "details")
		if !errors.Is(err, ErrDeploymentNotConfigured) {
			t.Fatalf("expected ErrDeploymentNotConfigured, got %v", err)
		}
		if mock.RequestCount() != 0 {
			t.Errorf("no completion call expected, got %d", mock.RequestCount())
		}
	})

	t.Run("configuration checked before input", func(t *testing.T) {
		p := NewPlanner(Config{})
		_, err := p.Plan(context.Background(), "")
		if !errors.Is(err, ErrProviderNotConfigured) {
			t.Fatalf("expected configuration error first, got %v", err)
		}
	})

	for _, details := range []string{"", "   ", "\n\t"} {
		t.Run("empty case details "+strings.ReplaceAll(details, "\n", `\n`), func(t *testing.T) {
			mock := providers.NewMockClient()
			p := newTestPlanner(t, mock)
			_, err := p.Plan(context.Background(), details)
			if !errors.Is(err, ErrEmptyCaseDetails) {
				t.Fatalf("expected ErrEmptyCaseDetails, got %v", err)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Error("should wrap ErrInvalidRequest")
			}
			if err.Error() == "" {
				t.Error("error message should not be empty")
			}
			if mock.RequestCount() != 0 {
				t.Errorf("no completion call expected, got %d", mock.RequestCount())
			}
		})
	}
}

func TestPlanRequest(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = validReply
	p := newTestPlanner(t, mock)

	ctx := svcctx.WithRequestID(context.Background(), "req-42")
	details := "王小明 台北市大安區 10:00 前"
	if _, err := p.Plan(ctx, details); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	req := mock.LastRequest()
	if req == nil {
		t.Fatal("expected a completion request")
	}
	if req.Model != "visit-planner" {
		t.Errorf("Model = %q, want visit-planner", req.Model)
	}
	if req.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", req.MaxTokens)
	}
	if req.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", req.Temperature)
	}
	if len(req.Stop) != 0 {
		t.Errorf("Stop = %v, want none", req.Stop)
	}
	if req.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", req.RequestID)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != providers.RoleSystem || req.Messages[1].Role != providers.RoleUser {
		t.Errorf("unexpected roles: %s, %s", req.Messages[0].Role, req.Messages[1].Role)
	}
	if !strings.HasSuffix(req.Messages[1].Content, details) {
		t.Error("user message should end with the case details")
	}
}

func TestPlanResponses(t *testing.T) {
	t.Run("schedule with leading prose", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = validReply
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.RawResponse != validReply {
			t.Error("RawResponse should be the unmodified completion text")
		}
		if result.Schedule == nil {
			t.Fatal("expected schedule to be parsed")
		}

		var got map[string]any
		if err := json.Unmarshal(result.Schedule, &got); err != nil {
			t.Fatalf("schedule is not valid JSON: %v", err)
		}
		if got["date"] != "2025-03-01" {
			t.Errorf("date = %v", got["date"])
		}
		if got["route_map_url"] != "https://maps.google.com/?q=route" {
			t.Errorf("route_map_url = %v", got["route_map_url"])
		}
		if _, ok := got["extra_field"]; !ok {
			t.Error("fields outside the documented shape should be preserved")
		}
		stops, _ := got["stops"].([]any)
		if len(stops) != 2 {
			t.Errorf("expected 2 stops, got %d", len(stops))
		}
	})

	t.Run("truncated object", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `排程如下 {"date": "2025-03-01", "stops": [{"order": 0`
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.Schedule != nil {
			t.Errorf("expected nil schedule, got %s", result.Schedule)
		}
		if result.RawResponse != mock.ResponseText {
			t.Error("RawResponse should be the unmodified completion text")
		}
	})

	t.Run("balanced but malformed object", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{date: 2025-03-01, stops: []}`
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.Schedule != nil {
			t.Errorf("expected nil schedule, got %s", result.Schedule)
		}
		if result.RawResponse != mock.ResponseText {
			t.Error("RawResponse mismatch")
		}
	})

	t.Run("brace inside string truncates the object", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{"date":"2025-03-01","reminders":["bring } gloves"]}`
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.Schedule != nil {
			t.Errorf("expected nil schedule, got %s", result.Schedule)
		}
	})

	t.Run("no object", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = "抱歉，資料不足，無法排程。"
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.Schedule != nil {
			t.Error("expected nil schedule")
		}
		if result.RawResponse != mock.ResponseText {
			t.Error("RawResponse mismatch")
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = ""
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if result.Schedule != nil || result.RawResponse != "" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("schema violation keeps the schedule", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `{"date": 20250301}`
		p := newTestPlanner(t, mock)

		result, err := p.Plan(context.Background(), "details")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if string(result.Schedule) != `{"date": 20250301}` {
			t.Errorf("Schedule = %s", result.Schedule)
		}
	})
}

func TestPlanProviderError(t *testing.T) {
	cause := &providers.APIError{Provider: "azure", StatusCode: 401, Message: "Access denied"}
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	mock.Err = cause
	p := newTestPlanner(t, mock)

	result, err := p.Plan(context.Background(), "details")
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
	pe, ok := IsProviderError(err)
	if !ok {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if pe.Provider != providers.MockClientName {
		t.Errorf("Provider = %q", pe.Provider)
	}
	if !errors.Is(err, cause) {
		t.Error("ProviderError should unwrap to the cause")
	}
	if !strings.Contains(err.Error(), "Access denied") {
		t.Errorf("error should carry the cause message: %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("expected exactly one attempt, got %d", mock.RequestCount())
	}
}

func TestPlanResultJSON(t *testing.T) {
	b, err := json.Marshal(&Result{RawResponse: "text"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"schedule":null,"rawResponse":"text"}` {
		t.Errorf("got %s", b)
	}
}

func TestReady(t *testing.T) {
	if err := NewPlanner(Config{}).Ready(); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("Ready() = %v", err)
	}
	p := NewPlanner(Config{Client: providers.NewMockClient(), Deployment: "d"})
	if err := p.Ready(); err != nil {
		t.Errorf("Ready() = %v", err)
	}
	if p.Provider() != providers.MockClientName {
		t.Errorf("Provider() = %q", p.Provider())
	}
}
