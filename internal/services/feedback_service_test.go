package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stresssense/stresssense/internal/models"
)

type stubFeedbackStore struct {
	channels map[string]*models.FeedbackChannel
	messages map[string][]*models.FeedbackMessage
}

func newStubFeedbackStore() *stubFeedbackStore {
	return &stubFeedbackStore{
		channels: map[string]*models.FeedbackChannel{},
		messages: map[string][]*models.FeedbackMessage{},
	}
}

func (s *stubFeedbackStore) InsertChannel(c *models.FeedbackChannel) error {
	s.channels[c.ID] = c
	return nil
}

func (s *stubFeedbackStore) GetChannel(id string) (*models.FeedbackChannel, error) {
	return s.channels[id], nil
}

func (s *stubFeedbackStore) ListChannels(orgID string) ([]*models.FeedbackChannel, error) {
	var out []*models.FeedbackChannel
	for _, c := range s.channels {
		if c.OrgID == orgID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubFeedbackStore) InsertMessage(m *models.FeedbackMessage) error {
	s.messages[m.ChannelID] = append(s.messages[m.ChannelID], m)
	return nil
}

func (s *stubFeedbackStore) ListMessages(channelID string, limit int) ([]*models.FeedbackMessage, error) {
	msgs := s.messages[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) SummarizeFeedback(ctx context.Context, channelName string, messages []string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func TestFeedbackChannelFlow(t *testing.T) {
	store := newStubFeedbackStore()
	svc := NewFeedbackService(store, nil)

	ch, err := svc.CreateChannel("org1", "  Workplace climate  ")
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if ch.Name != "Workplace climate" {
		t.Fatalf("name = %q, want trimmed", ch.Name)
	}

	msg, err := svc.PostMessage("org1", ch.ID, "meetings could be shorter")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if msg.ID == "" || msg.ChannelID != ch.ID {
		t.Fatalf("message = %+v", msg)
	}

	msgs, err := svc.ListMessages("org1", ch.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "meetings could be shorter" {
		t.Fatalf("messages = %+v", msgs)
	}

	// Cross-org access denied.
	if _, err := svc.ListMessages("org2", ch.ID, 0); err == nil {
		t.Fatal("cross-org list should fail")
	}
	if _, err := svc.PostMessage("org2", ch.ID, "x"); err == nil {
		t.Fatal("cross-org post should fail")
	}
}

func TestFeedbackSummarize(t *testing.T) {
	store := newStubFeedbackStore()
	sum := &stubSummarizer{summary: "Themes: meeting load, unclear priorities."}
	svc := NewFeedbackService(store, sum)

	ch, _ := svc.CreateChannel("org1", "Climate")
	for _, body := range []string{"too many meetings", "priorities shift weekly", "standups run long"} {
		if _, err := svc.PostMessage("org1", ch.ID, body); err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
	}

	got, err := svc.Summarize(context.Background(), "org1", ch.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(got, "meeting load") {
		t.Fatalf("summary = %q", got)
	}
	if sum.calls != 1 {
		t.Fatalf("summarizer calls = %d, want 1", sum.calls)
	}
}

func TestFeedbackSummarizeGuards(t *testing.T) {
	store := newStubFeedbackStore()
	sum := &stubSummarizer{summary: "s"}
	svc := NewFeedbackService(store, sum)
	ch, _ := svc.CreateChannel("org1", "Climate")

	// Too few messages.
	_, _ = svc.PostMessage("org1", ch.ID, "just one message")
	_, err := svc.Summarize(context.Background(), "org1", ch.ID)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("thin channel: err = %v, want invalid", err)
	}
	if sum.calls != 0 {
		t.Fatal("summarizer should not be called for a thin channel")
	}

	// Unconfigured summarizer.
	plain := NewFeedbackService(store, nil)
	_, err = plain.Summarize(context.Background(), "org1", ch.ID)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("no summarizer: err = %v, want invalid", err)
	}

	// Upstream failure surfaces as bad gateway.
	failing := NewFeedbackService(store, &stubSummarizer{err: errors.New("llm down")})
	for _, body := range []string{"a", "b"} {
		_, _ = failing.PostMessage("org1", ch.ID, body)
	}
	_, err = failing.Summarize(context.Background(), "org1", ch.ID)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorBadGateway {
		t.Fatalf("llm failure: err = %v, want bad gateway", err)
	}
}
