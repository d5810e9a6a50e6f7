package domain

// Quote is an aphorism shown on the diary home screen.
type Quote struct {
	ID         int64  `json:"id"`
	Author     string `json:"author"`
	Message    string `json:"message"`
	Bookmarked bool   `json:"bookmarked,omitempty"`
}
