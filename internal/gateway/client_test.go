package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotaboard/internal/model"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &logger
}

func modelText(t *testing.T, text string) string {
	t.Helper()
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(data)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Model:          "test-model",
		Timeout:        5 * time.Second,
		RequestsPerMin: 6000,
	}, testLogger())
}

func TestProposeSuccess(t *testing.T) {
	reply := `{"message":"done","newAssignments":[{"shiftId":"s1","employeeId":"e1","specialDuty":"Grill station"}],"employeesToAdd":[{"name":"Frank Diaz","role":"Chef"}]}`

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Contains(t, req, "systemInstruction")
		assert.Contains(t, req, "contents")
		_, _ = w.Write([]byte(modelText(t, reply)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	got, err := c.Propose(context.Background(), Snapshot{WeekID: "2025-03-10"}, "fill the week")
	require.NoError(t, err)

	assert.Equal(t, "done", got.Message)
	require.Len(t, got.NewAssignments, 1)
	assert.Equal(t, "s1", got.NewAssignments[0].ShiftID)
	assert.Equal(t, "Grill station", got.NewAssignments[0].SpecialDuty)
	require.Len(t, got.EmployeesToAdd, 1)
	assert.Equal(t, "test-key", gotKey, "api key travels with the request")
}

func TestProposeStripsMarkdownFence(t *testing.T) {
	reply := "```json\n{\"message\":\"ok\",\"newAssignments\":[]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(modelText(t, reply)))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv).Propose(context.Background(), Snapshot{}, "clear it")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Message)
	assert.Empty(t, got.NewAssignments)
	assert.NotNil(t, got.NewAssignments, "explicit empty list is valid, not missing")
}

func TestProposeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Propose(context.Background(), Snapshot{}, "x")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestProposeMalformedReply(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "I think Tuesday looks busy."},
		{"missing newAssignments", `{"message":"hello"}`},
		{"missing message", `{"newAssignments":[]}`},
		{"assignment without ids", `{"message":"ok","newAssignments":[{"specialDuty":"Grill"}]}`},
		{"hire without name", `{"message":"ok","newAssignments":[],"employeesToAdd":[{"role":"Chef"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(modelText(t, tt.text)))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).Propose(context.Background(), Snapshot{}, "x")
			assert.ErrorIs(t, err, ErrGateway, "a bad reply is an error, never a fallback schedule")
		})
	}
}

func TestProposeMissingAPIKey(t *testing.T) {
	c := NewClient(Config{}, testLogger())
	_, err := c.Propose(context.Background(), Snapshot{}, "x")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestProposeCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// r.Context() when the client goes away; otherwise this handler
		// never unblocks and the deferred srv.Close() deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(t, srv).Propose(ctx, Snapshot{}, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "cancellation is distinct from gateway failure, got %v", err)
	assert.False(t, errors.Is(err, ErrGateway))
}

func TestParseReplyFenceVariants(t *testing.T) {
	want := &Reply{Message: "ok", NewAssignments: []model.ProposedAssignment{}}

	for _, raw := range []string{
		`{"message":"ok","newAssignments":[]}`,
		"```json\n{\"message\":\"ok\",\"newAssignments\":[]}\n```",
		"```\n{\"message\":\"ok\",\"newAssignments\":[]}\n```",
		"  \n```json\n{\"message\":\"ok\",\"newAssignments\":[]}\n```\n  ",
	} {
		got, err := ParseReply(raw)
		require.NoError(t, err, "raw: %q", raw)
		assert.Equal(t, want.Message, got.Message)
		assert.NotNil(t, got.NewAssignments)
	}
}

func TestBuildPromptIncludesState(t *testing.T) {
	snap := Snapshot{
		WeekID:      "2025-03-10",
		Employees:   []model.Employee{{ID: "e1", Name: "Alice Moreau", Role: model.RoleHost}},
		Shifts:      []model.Shift{{ID: "s1", Day: model.Monday, StartTime: "11:00", EndTime: "17:00", Label: "Lunch"}},
		DutyLabels:  []string{"Grill station"},
		Assignments: []model.Assignment{{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: "2025-03-10"}},
		Rules:       "no doubles",
	}

	prompt, err := BuildPrompt(snap, "swap Alice off Monday")
	require.NoError(t, err)

	for _, fragment := range []string{
		"swap Alice off Monday", "no doubles", "2025-03-10",
		"Alice Moreau", "Grill station", `"a1"`,
	} {
		assert.Contains(t, prompt, fragment)
	}
}
