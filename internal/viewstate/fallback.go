package viewstate

import (
	"encoding/json"
	"fmt"
)

// FallbackSize is the number of items in the fallback sequence.
const FallbackSize = 10

// FallbackResults returns the fixed sequence shown after every submit: playlist1 holds song1..song3,
// playlist2 through playlist10 hold song4..song6. Each call returns a fresh slice.
func FallbackResults() []ResultItem {
	items := make([]ResultItem, 0, FallbackSize)
	items = append(items, ResultItem{Name: "playlist1", Tracks: []string{"song1", "song2", "song3"}})
	for i := 2; i <= FallbackSize; i++ {
		items = append(items, ResultItem{
			Name:   fmt.Sprintf("playlist%d", i),
			Tracks: []string{"song4", "song5", "song6"},
		})
	}
	return items
}

// ResultsFromPayload extracts playlists from a decoded proxy payload of the form
// {"playlists": [{"name": "...", "tracks": ["..."]}]}.
//
// Reports false when the payload has no such list or the list is empty.
func ResultsFromPayload(payload any) ([]ResultItem, bool) {
	if payload == nil {
		return nil, false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}

	var body struct {
		Playlists []ResultItem `json:"playlists"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Playlists) == 0 {
		return nil, false
	}
	return body.Playlists, true
}

func cloneResults(items []ResultItem) []ResultItem {
	out := make([]ResultItem, len(items))
	for i, it := range items {
		out[i] = ResultItem{Name: it.Name, Tracks: append([]string(nil), it.Tracks...)}
	}
	return out
}
