package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/handlers/render"
	"github.com/akorchagin/pollster/internal/handlers/userctx"
	"github.com/akorchagin/pollster/internal/logger"
	"github.com/akorchagin/pollster/internal/metrics"
	"github.com/akorchagin/pollster/internal/models"
)

type PollChoiceResponse struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Votes int64     `json:"votes"`
}

type PollResponse struct {
	ID        uuid.UUID            `json:"id"`
	Question  string               `json:"question"`
	Choices   []PollChoiceResponse `json:"choices"`
	CreatedBy uuid.UUID            `json:"createdBy"`
	CreatedAt time.Time            `json:"createdAt"`
}

func pollToResponse(p models.Poll) PollResponse {
	choices := make([]PollChoiceResponse, len(p.Choices))
	for i, c := range p.Choices {
		choices[i] = PollChoiceResponse{ID: c.ID, Text: c.Text, Votes: c.Votes}
	}

	return PollResponse{
		ID:        p.ID,
		Question:  p.Question,
		Choices:   choices,
		CreatedBy: p.CreatorID,
		CreatedAt: p.CreatedAt,
	}
}

func handleCreatePoll(pollService pollService, logger logger.Logger) http.Handler {
	type CreatePollRequest struct {
		Question string   `json:"question" validate:"required"`
		Choices  []string `json:"choices" validate:"required,min=2,dive,required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[CreatePollRequest](w, r)
		if err != nil {
			return
		}

		p, err := pollService.CreatePoll(r.Context(), data.Question, data.Choices, user.ID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrValidation):
				render.ServiceError(w, "Please provide a question and at least two choices.", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrDuplicateQuestion):
				render.ServiceError(w, "A poll with this question already exists.", http.StatusBadRequest)
			default:
				logger.Error("poll creation failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, pollToResponse(p), http.StatusCreated)
	})
}

func handleCastVote(pollService pollService, logger logger.Logger) http.Handler {
	type CastVoteRequest struct {
		ChoiceID string `json:"choiceId" validate:"required"`
	}
	type CastVoteResponse struct {
		Message string            `json:"message"`
		Results models.ResultView `json:"results"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		pollID, err := uuid.Parse(r.PathValue("pollID"))
		if err != nil {
			render.ServiceError(w, "Vote poll not found.", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[CastVoteRequest](w, r)
		if err != nil {
			return
		}

		choiceID, err := uuid.Parse(data.ChoiceID)
		if err != nil {
			render.ServiceError(w, "Invalid choice ID for this poll.", http.StatusBadRequest)
			return
		}

		results, err := pollService.CastVote(r.Context(), pollID, choiceID, user.ID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPollNotFound):
				metrics.ObserveVoteCast("not_found")
				render.ServiceError(w, "Vote poll not found.", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrAlreadyVoted):
				metrics.ObserveVoteCast("already_voted")
				render.ServiceError(w, "You have already voted in this poll.", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrChoiceNotFound):
				metrics.ObserveVoteCast("invalid_choice")
				render.ServiceError(w, "Invalid choice ID for this poll.", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrVoteConflict):
				metrics.ObserveVoteCast("conflict")
				render.ServiceError(w, "Failed to update vote or choice not found.", http.StatusInternalServerError)
			default:
				metrics.ObserveVoteCast("error")
				logger.Error("vote cast failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		metrics.ObserveVoteCast("ok")
		render.JSON(w, CastVoteResponse{
			Message: "Vote cast successfully",
			Results: results,
		})
	})
}

func handleResults(pollService pollService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pollID, err := uuid.Parse(r.PathValue("pollID"))
		if err != nil {
			render.ServiceError(w, "Vote poll not found.", http.StatusNotFound)
			return
		}

		results, err := pollService.Results(r.Context(), pollID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPollNotFound):
				render.ServiceError(w, "Vote poll not found.", http.StatusNotFound)
			default:
				logger.Error("results lookup failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, results)
	})
}
