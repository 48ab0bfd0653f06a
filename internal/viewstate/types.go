package viewstate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/playrec/internal/shared"
)

// SessionStatus is the sign-in state reported by the authentication collaborator.
type SessionStatus int

const (
	SignedOut SessionStatus = iota
	SignedIn
)

func (s SessionStatus) String() string {
	if s == SignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// MarshalJSON encodes the status as its string form.
func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Phase records whether at least one query has been submitted.
type Phase int

const (
	Idle Phase = iota
	Submitted
)

func (p Phase) String() string {
	if p == Submitted {
		return "submitted"
	}
	return "idle"
}

// ResultItem is one recommended playlist.
type ResultItem struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// FeedbackChoice is one of the rating controls shown under the results.
type FeedbackChoice int

const (
	Excellent FeedbackChoice = iota
	Mediocre
	Terrible
)

var feedbackLabels = [...]string{"Excellent", "Mediocre", "Terrible"}

func (f FeedbackChoice) String() string {
	if f < Excellent || f > Terrible {
		return fmt.Sprintf("FeedbackChoice(%d)", int(f))
	}
	return feedbackLabels[f]
}

// MarshalJSON encodes the choice as its label.
func (f FeedbackChoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// FeedbackChoices returns every choice in display order.
func FeedbackChoices() []FeedbackChoice {
	return []FeedbackChoice{Excellent, Mediocre, Terrible}
}

// ParseFeedbackChoice matches s case-insensitively against the choice labels.
func ParseFeedbackChoice(s string) (FeedbackChoice, error) {
	for _, c := range FeedbackChoices() {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown feedback choice %q", shared.ErrInvalidInput, s)
}
