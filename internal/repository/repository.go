package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/akorchagin/pollster/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type CreateUserParams struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// RefreshToken repository interface
// The refresh-token validity and revocation store is an explicit
// collaborator: the token manager only ever talks to this interface.
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token and mark it used in one atomic step
	// If the token is unknown must return apperrors.ErrRefreshTokenNotFound
	// If the token was used already must return apperrors.ErrRefreshTokenIsUsed
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Poll repository interface
type PollRepo interface {
	// Persist a new poll with zeroed counters and an empty voter set
	// Has to return apperrors.ErrDuplicateQuestion on a question uniqueness violation
	CreatePoll(ctx context.Context, poll models.Poll) (models.Poll, error)

	// Point lookup returning the poll with its choices and voter set
	// Has to return apperrors.ErrPollNotFound if absent
	GetPoll(ctx context.Context, pollID uuid.UUID) (models.Poll, error)

	// CastVote is the atomic conditional update the vote invariant rests on:
	// in a single store-level step it must increment the matched choice and
	// append the voter, or do nothing at all. Zero-row outcomes are reported
	// as apperrors.ErrPollNotFound, ErrChoiceNotFound, ErrAlreadyVoted or
	// ErrVoteConflict. Returns the updated poll on success.
	CastVote(ctx context.Context, pollID uuid.UUID, choiceID uuid.UUID, userID uuid.UUID) (models.Poll, error)
}

// Storage aggregates all repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Poll() PollRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
