// Package chat owns the conversation with the AI collaborator and the
// two-phase commit of its proposals: a reply is staged as a pending
// proposal attached to a message, and only an explicit accept runs the
// reconciler against the store.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rotaboard/internal/gateway"
	"rotaboard/internal/metrics"
	"rotaboard/internal/model"
	"rotaboard/internal/store"
	"rotaboard/internal/week"
)

var (
	// ErrBusy means a gateway request is already in flight. The second
	// request is rejected, not queued, so two pending proposals can
	// never interleave.
	ErrBusy = errors.New("a scheduling request is already in flight")
	// ErrNoProposal means the message id carries no proposal.
	ErrNoProposal = errors.New("no proposal for message")
	// ErrNotPending means the proposal was already applied or discarded.
	ErrNotPending = errors.New("proposal is not pending")
)

// Author identifies who wrote a chat message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is one entry of the conversation. Proposal is set only on
// assistant messages that carry a schedule rewrite.
type Message struct {
	ID        string          `json:"id"`
	Author    Author          `json:"author"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	Proposal  *model.Proposal `json:"proposal,omitempty"`
}

// Gateway is the outbound dependency; satisfied by *gateway.Client.
type Gateway interface {
	Propose(ctx context.Context, snap gateway.Snapshot, userText string) (*gateway.Reply, error)
}

// Session is one chat conversation over one store.
type Session struct {
	store  *store.Store
	gw     Gateway
	logger *zerolog.Logger

	mu       sync.Mutex
	messages []Message
	inFlight bool
	cancel   context.CancelFunc
}

// NewSession creates a session over the given store and gateway.
func NewSession(st *store.Store, gw Gateway, logger *zerolog.Logger) *Session {
	return &Session{store: st, gw: gw, logger: logger}
}

// Loading reports whether a gateway request is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// History returns a copy of the conversation.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send submits the manager's request for the week containing viewedAt.
// It blocks until the gateway answers, fails, or is canceled.
//
// On success the assistant's reply carries a pending proposal. On
// gateway failure an assistant-authored error message is appended and
// no proposal is created. On cancellation nothing is appended at all
// and the returned error is context.Canceled.
func (s *Session) Send(ctx context.Context, text string, viewedAt time.Time) (Message, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.inFlight = true
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Author:    AuthorUser,
		Text:      text,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	weekID := week.ID(viewedAt)
	snap := gateway.Snapshot{
		WeekID:      weekID,
		Employees:   s.store.Employees(),
		Shifts:      s.store.Shifts(),
		DutyLabels:  dutyLabels(s.store.Duties()),
		Assignments: s.store.AssignmentsForWeek(weekID),
		Rules:       s.store.AIRules(),
	}

	reply, err := s.gw.Propose(reqCtx, snap, text)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Cancellation is not a failure: no message, no proposal.
			s.logger.Debug().Msg("scheduling request canceled")
			return Message{}, context.Canceled
		}
		msg := Message{
			ID:        uuid.NewString(),
			Author:    AuthorAssistant,
			Text:      errorText(err),
			CreatedAt: time.Now(),
		}
		s.messages = append(s.messages, msg)
		return msg, nil
	}

	msg := Message{
		ID:        uuid.NewString(),
		Author:    AuthorAssistant,
		Text:      reply.Message,
		CreatedAt: time.Now(),
	}
	msg.Proposal = &model.Proposal{
		MessageID:   msg.ID,
		WeekID:      weekID,
		Assignments: reply.NewAssignments,
		NewHires:    reply.EmployeesToAdd,
		Status:      model.ProposalPending,
	}
	s.messages = append(s.messages, msg)
	metrics.IncProposalReceived()
	return msg, nil
}

// Cancel aborts the in-flight gateway request, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Apply commits the pending proposal attached to messageID: the
// reconciler merges it into the store and the proposal is marked
// applied. The commit is all-or-nothing.
func (s *Session) Apply(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.pendingLocked(messageID)
	if err != nil {
		return err
	}

	res := s.store.CommitProposal(ctx, p.WeekID, p.Assignments, p.NewHires)

	p.Status = model.ProposalApplied
	metrics.IncProposalResolved("applied")
	s.logger.Info().
		Str("week", p.WeekID).
		Int("assignments", len(p.Assignments)).
		Int("new_employees", len(res.NewEmployees)).
		Msg("proposal applied")
	return nil
}

// Discard rejects the pending proposal attached to messageID. The
// store is left completely unchanged.
func (s *Session) Discard(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.pendingLocked(messageID)
	if err != nil {
		return err
	}
	p.Status = model.ProposalDiscarded
	metrics.IncProposalResolved("discarded")
	return nil
}

func (s *Session) pendingLocked(messageID string) (*model.Proposal, error) {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			p := s.messages[i].Proposal
			if p == nil {
				return nil, ErrNoProposal
			}
			if p.Status != model.ProposalPending {
				return nil, ErrNotPending
			}
			return p, nil
		}
	}
	return nil, ErrNoProposal
}

func dutyLabels(duties []model.Duty) []string {
	labels := make([]string, 0, len(duties))
	for _, d := range duties {
		labels = append(labels, d.Label)
	}
	return labels
}

func errorText(err error) string {
	if errors.Is(err, gateway.ErrMissingAPIKey) {
		return "I can't reach the scheduling assistant: no API key is configured."
	}
	return "Sorry, I couldn't get a schedule proposal: " + err.Error()
}
