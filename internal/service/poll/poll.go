package poll

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/models"
	"github.com/akorchagin/pollster/internal/repository"
)

type Service struct {
	// Repository to access long term data
	polls repository.PollRepo
}

func NewService(polls repository.PollRepo) *Service {
	return &Service{
		polls: polls,
	}
}

// CreatePoll validates and persists a new poll: trimmed non-empty question,
// at least two trimmed non-empty choices, all counters at zero, voter set
// empty. Question uniqueness is enforced by the store.
func (s *Service) CreatePoll(ctx context.Context, question string, choiceTexts []string, creatorID uuid.UUID) (models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Poll{}, fmt.Errorf("%w: question must not be empty", apperrors.ErrValidation)
	}

	if len(choiceTexts) < 2 {
		return models.Poll{}, fmt.Errorf("%w: poll needs at least two choices", apperrors.ErrValidation)
	}

	choices := make([]models.Choice, len(choiceTexts))
	for i, text := range choiceTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			return models.Poll{}, fmt.Errorf("%w: choice text must not be empty", apperrors.ErrValidation)
		}
		choices[i] = models.Choice{
			ID:    uuid.New(),
			Text:  text,
			Votes: 0,
		}
	}

	return s.polls.CreatePoll(ctx, models.Poll{
		ID:        uuid.New(),
		Question:  question,
		Choices:   choices,
		CreatorID: creatorID,
	})
}

// CastVote records exactly one vote per user per poll.
//
// The membership and choice checks here are the cheap fast path. The store's
// single conditional update is the actual enforcement boundary: two requests
// from the same user racing past the checks still resolve to one success,
// because the update appends the voter and bumps the counter in one atomic
// step that fails for a duplicate voter.
func (s *Service) CastVote(ctx context.Context, pollID uuid.UUID, choiceID uuid.UUID, userID uuid.UUID) (models.ResultView, error) {
	p, err := s.polls.GetPoll(ctx, pollID)
	if err != nil {
		return models.ResultView{}, err
	}

	if p.HasVoted(userID) {
		return models.ResultView{}, apperrors.ErrAlreadyVoted
	}

	if _, ok := p.FindChoice(choiceID); !ok {
		return models.ResultView{}, apperrors.ErrChoiceNotFound
	}

	updated, err := s.polls.CastVote(ctx, pollID, choiceID, userID)
	if err != nil {
		return models.ResultView{}, err
	}

	return FormatResults(updated), nil
}

// Results returns the live aggregated view of a poll
func (s *Service) Results(ctx context.Context, pollID uuid.UUID) (models.ResultView, error) {
	p, err := s.polls.GetPoll(ctx, pollID)
	if err != nil {
		return models.ResultView{}, err
	}

	return FormatResults(p), nil
}
