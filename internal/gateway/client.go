// Package gateway talks to the external text-generation endpoint that
// acts as the scheduling collaborator. The model's output is treated as
// an untrusted payload: it is schema-checked before anything downstream
// sees it, and a bad reply is an error, never a fabricated schedule.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"rotaboard/internal/metrics"
	"rotaboard/internal/model"
)

var (
	// ErrMissingAPIKey means the gateway was never configured.
	ErrMissingAPIKey = errors.New("gateway api key is not set")
	// ErrGateway wraps every transport, status and parse failure. The
	// caller surfaces it as a single recoverable "AI communication
	// error"; it never crashes the reconciler.
	ErrGateway = errors.New("ai gateway error")
)

// Reply is the validated response of one gateway round-trip.
type Reply struct {
	Message        string                     `json:"message"`
	NewAssignments []model.ProposedAssignment `json:"newAssignments"`
	EmployeesToAdd []model.ProposedEmployee   `json:"employeesToAdd,omitempty"`
}

// Config configures the gateway client.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	RequestsPerMin int
}

// Client issues generateContent requests to a Gemini-style endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

// NewClient constructs a gateway client. Zero config values get
// defaults; an empty API key is allowed here and rejected per request.
func NewClient(cfg Config, logger *zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 10
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60), 1),
		logger:     logger,
	}
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature,omitempty"`
		ResponseMimeType string  `json:"response_mime_type,omitempty"`
	} `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Propose sends one scheduling request and returns the model's
// validated reply. Cancelling ctx aborts the call; the returned error
// then satisfies errors.Is(err, context.Canceled) and is not counted
// as a gateway failure.
func (c *Client) Propose(ctx context.Context, snap Snapshot, userText string) (*Reply, error) {
	if c.apiKey == "" {
		metrics.IncGatewayRequest("no_key")
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(snap, userText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstructions}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.Temperature = 0.2
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrGateway, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			metrics.IncGatewayRequest("canceled")
			return nil, ctx.Err()
		}
		metrics.IncGatewayRequest("transport_error")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.IncGatewayRequest("transport_error")
		return nil, fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncGatewayRequest("http_error")
		c.logger.Warn().Int("status", resp.StatusCode).Msg("gateway returned non-success status")
		return nil, fmt.Errorf("%w: http %d", ErrGateway, resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		metrics.IncGatewayRequest("parse_error")
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	if gr.Error != nil {
		metrics.IncGatewayRequest("http_error")
		return nil, fmt.Errorf("%w: %s", ErrGateway, gr.Error.Message)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		metrics.IncGatewayRequest("parse_error")
		return nil, fmt.Errorf("%w: empty response", ErrGateway)
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	reply, err := ParseReply(text.String())
	if err != nil {
		metrics.IncGatewayRequest("parse_error")
		return nil, err
	}

	metrics.IncGatewayRequest("ok")
	c.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("assignments", len(reply.NewAssignments)).
		Int("new_employees", len(reply.EmployeesToAdd)).
		Msg("gateway proposal received")
	return reply, nil
}

// ParseReply validates the model's raw text as a Reply. The text may be
// wrapped in a markdown code fence. A missing newAssignments field is a
// schema violation: the contract requires the full set, so nil cannot
// be distinguished from "delete everything" without it being explicit.
func ParseReply(raw string) (*Reply, error) {
	raw = stripFences(raw)

	var probe struct {
		Message        *string                     `json:"message"`
		NewAssignments *[]model.ProposedAssignment `json:"newAssignments"`
		EmployeesToAdd []model.ProposedEmployee    `json:"employeesToAdd"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("%w: malformed reply json: %v", ErrGateway, err)
	}
	if probe.Message == nil || probe.NewAssignments == nil {
		return nil, fmt.Errorf("%w: reply missing message or newAssignments", ErrGateway)
	}
	for i, a := range *probe.NewAssignments {
		if a.ShiftID == "" || a.EmployeeID == "" {
			return nil, fmt.Errorf("%w: newAssignments[%d] missing shiftId or employeeId", ErrGateway, i)
		}
	}
	for i, e := range probe.EmployeesToAdd {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: employeesToAdd[%d] missing name", ErrGateway, i)
		}
	}
	return &Reply{
		Message:        *probe.Message,
		NewAssignments: *probe.NewAssignments,
		EmployeesToAdd: probe.EmployeesToAdd,
	}, nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line ("json" etc).
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
