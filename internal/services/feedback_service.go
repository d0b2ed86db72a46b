package services

import (
	"context"
	"strings"
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

// FeedbackStore abstracts persistence operations required by FeedbackService.
type FeedbackStore interface {
	InsertChannel(c *models.FeedbackChannel) error
	GetChannel(id string) (*models.FeedbackChannel, error)
	ListChannels(orgID string) ([]*models.FeedbackChannel, error)
	InsertMessage(m *models.FeedbackMessage) error
	ListMessages(channelID string, limit int) ([]*models.FeedbackMessage, error)
}

// Summarizer condenses a set of feedback messages into a short digest.
// Implemented by the OpenAI-compatible client in internal/ai.
type Summarizer interface {
	SummarizeFeedback(ctx context.Context, channelName string, messages []string) (string, error)
}

// minSummaryMessages keeps a summary from deanonymizing a near-empty
// channel by quoting its only message back.
const minSummaryMessages = 3

// FeedbackService manages anonymous feedback channels. Messages carry no
// author reference at any layer.
type FeedbackService struct {
	store      FeedbackStore
	summarizer Summarizer
	now        func() time.Time
	idGen      func(n int) string
}

func NewFeedbackService(store FeedbackStore, summarizer Summarizer) *FeedbackService {
	return &FeedbackService{
		store:      store,
		summarizer: summarizer,
		now:        func() time.Time { return time.Now().UTC() },
		idGen:      shortID,
	}
}

func (s *FeedbackService) CreateChannel(orgID, name string) (*models.FeedbackChannel, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	ch := &models.FeedbackChannel{ID: s.idGen(8), OrgID: orgID, Name: name, CreatedAt: s.now()}
	if err := s.store.InsertChannel(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *FeedbackService) ListChannels(orgID string) ([]*models.FeedbackChannel, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListChannels(orgID)
}

// PostMessage accepts a message from anyone in the org. Only the body is
// stored.
func (s *FeedbackService) PostMessage(orgID, channelID, body string) (*models.FeedbackMessage, error) {
	ch, err := s.ownedChannel(orgID, channelID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, NewInvalidError("body required")
	}
	msg := &models.FeedbackMessage{
		ID:        s.idGen(12),
		ChannelID: ch.ID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *FeedbackService) ListMessages(orgID, channelID string, limit int) ([]*models.FeedbackMessage, error) {
	ch, err := s.ownedChannel(orgID, channelID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.store.ListMessages(ch.ID, limit)
}

// Summarize produces an AI digest of the channel's recent messages.
func (s *FeedbackService) Summarize(ctx context.Context, orgID, channelID string) (string, error) {
	ch, err := s.ownedChannel(orgID, channelID)
	if err != nil {
		return "", err
	}
	if s.summarizer == nil {
		return "", NewInvalidError("summarization is not configured")
	}
	msgs, err := s.store.ListMessages(ch.ID, 100)
	if err != nil {
		return "", err
	}
	if len(msgs) < minSummaryMessages {
		return "", NewInvalidError("not enough messages to summarize")
	}
	bodies := make([]string, 0, len(msgs))
	for _, m := range msgs {
		bodies = append(bodies, m.Body)
	}
	summary, err := s.summarizer.SummarizeFeedback(ctx, ch.Name, bodies)
	if err != nil {
		return "", NewBadGatewayError("summarization failed: " + err.Error())
	}
	return summary, nil
}

func (s *FeedbackService) ownedChannel(orgID, channelID string) (*models.FeedbackChannel, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	ch, err := s.store.GetChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil || ch.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	return ch, nil
}
