// Package cache holds the Redis-backed snapshot cache for dashboard
// summaries.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stresssense/stresssense/internal/services"
)

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache wraps a Redis client as a services.SummaryCache.
func NewSummaryCache(client *redis.Client) services.SummaryCache {
	return &summaryCache{client: client, ttl: 5 * time.Minute}
}

func (c *summaryCache) summaryKey(orgID, surveyID string) string {
	return fmt.Sprintf("org:%s:survey:%s:summary", orgID, surveyID)
}

func (c *summaryCache) GetSummary(ctx context.Context, orgID, surveyID string) (*services.SurveySummary, error) {
	data, err := c.client.Get(ctx, c.summaryKey(orgID, surveyID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary services.SurveySummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *summaryCache) SetSummary(ctx context.Context, orgID string, summary *services.SurveySummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.summaryKey(orgID, summary.SurveyID), data, c.ttl).Err()
}

func (c *summaryCache) InvalidateSummary(ctx context.Context, orgID, surveyID string) error {
	return c.client.Del(ctx, c.summaryKey(orgID, surveyID)).Err()
}
