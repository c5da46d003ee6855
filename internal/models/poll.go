package models

import (
	"time"

	"github.com/google/uuid"
)

// Poll is created once and thereafter mutated only by vote casting:
// one choice counter incremented and one voter appended, always together.
type Poll struct {
	ID         uuid.UUID
	Question   string
	Choices    []Choice
	VoterIDs   []uuid.UUID
	CreatorID  uuid.UUID
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Choice keeps the json tags choices are stored and aggregated with
type Choice struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Votes int64     `json:"votes"`
}

// HasVoted reports whether the user is already in the poll voter set.
// Advisory only: the store-level conditional update is what actually
// rejects duplicates under concurrency.
func (p Poll) HasVoted(userID uuid.UUID) bool {
	for _, id := range p.VoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// FindChoice returns the choice with the given id, if any.
func (p Poll) FindChoice(choiceID uuid.UUID) (Choice, bool) {
	for _, c := range p.Choices {
		if c.ID == choiceID {
			return c, true
		}
	}
	return Choice{}, false
}

// TotalVotes is the sum of all choice counters. It equals len(VoterIDs)
// at all times.
func (p Poll) TotalVotes() int64 {
	var total int64
	for _, c := range p.Choices {
		total += c.Votes
	}
	return total
}
