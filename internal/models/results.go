package models

import (
	"github.com/google/uuid"
)

// ResultView is the read-only percentage-annotated projection of a poll
type ResultView struct {
	ID         uuid.UUID      `json:"id"`
	Question   string         `json:"question"`
	Choices    []ChoiceResult `json:"choices"`
	TotalVotes int64          `json:"totalVotes"`
}

type ChoiceResult struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Votes      int64     `json:"votes"`
	Percentage float64   `json:"percentage"`
}
