package explore

import (
	"github.com/goccy/go-json"

	"github.com/sydlexius/songscape/internal/document"
)

// Mode selects the shape of a Response.
type Mode int

// Response shapes.
const (
	ModeNoMatch Mode = iota
	ModeList
	ModeArtist
)

// Result is the combined data for one resolved artist.
type Result struct {
	Meta          document.Document   `json:"meta"`
	Songs         document.Document   `json:"songs"`
	LastFMInfo    document.Document   `json:"lastfm_info"`
	LastFMSimilar []document.Document `json:"lastfm_similar"`
	LocalRecs     []string            `json:"local_recs"`
	MatchedName   string              `json:"matched_name"`
}

// Response is the outcome of a Query.
type Response struct {
	Mode       Mode
	AllArtists []string
	Artist     *Result
}

type listBody struct {
	AllArtists []string `json:"all_artists"`
}

// MarshalJSON encodes the response as {"all_artists": [...]}, {} or the
// artist result, depending on Mode. Missing fields encode as empty values,
// never null.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Mode {
	case ModeList:
		names := r.AllArtists
		if names == nil {
			names = []string{}
		}
		return json.Marshal(listBody{AllArtists: names})
	case ModeArtist:
		if r.Artist == nil {
			break
		}
		res := *r.Artist
		for _, d := range []*document.Document{&res.Meta, &res.Songs, &res.LastFMInfo} {
			if *d == nil {
				*d = document.Empty()
			}
		}
		if res.LastFMSimilar == nil {
			res.LastFMSimilar = []document.Document{}
		}
		if res.LocalRecs == nil {
			res.LocalRecs = []string{}
		}
		return json.Marshal(res)
	}
	return []byte("{}"), nil
}
