package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrAccessTokenExpired = errors.New("access token is expired")
	ErrAccessTokenInvalid = errors.New("access token is invalid")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrPollNotFound      = errors.New("poll not found")
	ErrDuplicateQuestion = errors.New("poll with this question already exists")
	ErrChoiceNotFound    = errors.New("choice does not belong to this poll")
	ErrAlreadyVoted      = errors.New("user has already voted in this poll")
	ErrVoteConflict      = errors.New("vote was not applied")

	ErrValidation = errors.New("validation failed")
)
