// Package model holds the character API data types shared by the fetcher,
// the renderer and the view.
package model

// Place is a named location reference (origin or last known location).
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is one record of the character API. It is never mutated after
// decoding.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   Place    `json:"origin"`
	Location Place    `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

// EpisodeCount returns the number of episodes the character appears in.
func (c Character) EpisodeCount() int {
	return len(c.Episode)
}
