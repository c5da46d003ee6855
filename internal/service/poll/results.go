package poll

import (
	"github.com/shopspring/decimal"

	"github.com/akorchagin/pollster/internal/models"
)

var hundred = decimal.NewFromInt(100)

// FormatResults projects a poll into its percentage-annotated view.
// Pure: same poll state always yields the same view.
//
// Percentages are rounded half away from zero to 2 decimal places,
// independently per choice, so they need not sum to exactly 100.
func FormatResults(p models.Poll) models.ResultView {
	totalVotes := p.TotalVotes()

	choices := make([]models.ChoiceResult, len(p.Choices))
	for i, c := range p.Choices {
		percentage := 0.0
		if totalVotes > 0 {
			percentage = decimal.NewFromInt(c.Votes).
				Mul(hundred).
				Div(decimal.NewFromInt(totalVotes)).
				Round(2).
				InexactFloat64()
		}

		choices[i] = models.ChoiceResult{
			ID:         c.ID,
			Text:       c.Text,
			Votes:      c.Votes,
			Percentage: percentage,
		}
	}

	return models.ResultView{
		ID:         p.ID,
		Question:   p.Question,
		Choices:    choices,
		TotalVotes: totalVotes,
	}
}
