package viewstate

// Labels rendered by every front end.
const (
	Title            = "Spotify Playlist Recommender"
	SignInLabel      = "Sign In"
	SignOutLabel     = "Sign Out"
	InputLabel       = "Enter playlist preferences:"
	InputPlaceholder = "Enter preferences..."
	SubmitLabel      = "Get Recommendations"

	// MaxCards and TracksPerCard bound what a results grid shows.
	MaxCards      = 10
	TracksPerCard = 3
)

// View is the renderable description of the page.
type View struct {
	Header      Header   `json:"header"`
	Input       Input    `json:"input"`
	SubmitLabel string   `json:"submit_label"`
	Results     *Results `json:"results,omitempty"`
}

// Header is the title bar with the sign-in or sign-out control.
type Header struct {
	Title   string        `json:"title"`
	Status  SessionStatus `json:"status"`
	Control string        `json:"control"`
}

// Input is the text field bound to the query text.
type Input struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Results is the card grid followed by the feedback controls.
type Results struct {
	Cards    []Card           `json:"cards"`
	Feedback []FeedbackChoice `json:"feedback"`
}

// Card shows one playlist and its first tracks.
type Card struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// CurrentView projects the controller state into a [View].
func (c *Controller) CurrentView() View {
	status := c.session.Status()

	c.mu.Lock()
	query, phase := c.query, c.phase
	var results []ResultItem
	if phase == Submitted {
		results = cloneResults(c.results)
	}
	c.mu.Unlock()

	return Project(query, status, phase, results)
}

// Project builds a [View] from explicit state. results is ignored unless phase is [Submitted].
func Project(query string, status SessionStatus, phase Phase, results []ResultItem) View {
	v := View{
		Header: Header{Title: Title, Status: status, Control: SignInLabel},
		Input: Input{
			Label:       InputLabel,
			Placeholder: InputPlaceholder,
			Value:       query,
		},
		SubmitLabel: SubmitLabel,
	}
	if status == SignedIn {
		v.Header.Control = SignOutLabel
	}

	if phase != Submitted {
		return v
	}

	if len(results) > MaxCards {
		results = results[:MaxCards]
	}
	cards := make([]Card, 0, len(results))
	for _, r := range results {
		tracks := r.Tracks
		if len(tracks) > TracksPerCard {
			tracks = tracks[:TracksPerCard]
		}
		cards = append(cards, Card{Name: r.Name, Tracks: append([]string(nil), tracks...)})
	}
	v.Results = &Results{Cards: cards, Feedback: FeedbackChoices()}
	return v
}

// HasResults reports whether the view has a results section.
func (v View) HasResults() bool {
	return v.Results != nil
}
