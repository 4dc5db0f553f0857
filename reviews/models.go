// Package reviews handles posting and listing reviews.
package reviews

import (
	"encoding/json"
	"time"
)

// Review is a posted review. UserID identifies the author and is always
// taken from the authenticated session, never from the request body.
type Review struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userID"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Body      string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReviewRequest is the request payload for posting a review. Rating is
// a json.Number so both `"rating": 4` and `"rating": "4"` are accepted,
// matching the form-originated clients.
type PostReviewRequest struct {
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Review   string      `json:"review"`
	Rating   json.Number `json:"rating"`
}
