package service

import (
	"context"
	"fmt"

	"pharmapos/internal/client"
)

// AIService forwards questions to the hosted assistant function. Locally
// that function does not exist and Ask reports ErrFeatureUnavailable.
type AIService interface {
	Ask(ctx context.Context, userID, prompt string) (any, error)
}

type aiService struct {
	db *client.Client
}

func NewAIService(db *client.Client) AIService { return &aiService{db: db} }

func (s *aiService) Ask(ctx context.Context, userID, prompt string) (any, error) {
	resp := s.db.Functions().Invoke(ctx, "ai-assistant", map[string]any{
		"prompt":  prompt,
		"user_id": userID,
	})
	if resp.Error != nil {
		if resp.Error.Name == client.LocalModeError {
			return nil, fmt.Errorf("%w: %s", ErrFeatureUnavailable, resp.Error.Message)
		}
		return nil, resp.Error
	}
	return resp.Data, nil
}
