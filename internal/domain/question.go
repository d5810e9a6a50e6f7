package domain

// Question is a journaling prompt offered to the user.
type Question struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
