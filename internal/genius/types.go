package genius

// searchResponse is the JSON response for /search.
type searchResponse struct {
	Response struct {
		Hits []searchHit `json:"hits"`
	} `json:"response"`
}

// searchHit is one search result entry.
type searchHit struct {
	Type   string `json:"type"`
	Result song   `json:"result"`
}

// song is the subset of Genius song metadata the client needs.
type song struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	PrimaryArtist struct {
		Name string `json:"name"`
	} `json:"primary_artist"`
}
