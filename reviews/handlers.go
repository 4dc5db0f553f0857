package reviews

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/reviewboard-go/apperror"
	"github.com/user/reviewboard-go/config"
	"github.com/user/reviewboard-go/validate"
	"github.com/user/reviewboard-go/web"
)

// Handlers provides the review API routes.
type Handlers struct {
	service ReviewService
	policy  *config.PolicyConfig
}

// NewHandlers creates a Handlers instance.
func NewHandlers(service ReviewService, policy *config.PolicyConfig) *Handlers {
	return &Handlers{service: service, policy: policy}
}

// RegisterRoutes registers the review routes on router. Both routes sit
// behind the API session gate.
func (h *Handlers) RegisterRoutes(router chi.Router) {
	router.Post("/postreview", h.handlePostReview)
	router.Get("/getallreviews", h.handleGetAllReviews)
}

// handlePostReview validates and stores a review for the authenticated
// caller.
// POST /postreview
func (h *Handlers) handlePostReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := web.UserIDFromContext(r.Context())
	if !ok {
		web.WriteError(w, r, apperror.NewAuthError("unauthorized", nil))
		return
	}

	var req PostReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
		return
	}

	review, err := h.bindReview(req)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	review.UserID = userID

	stored, err := h.service.Post(r.Context(), *review)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, stored)
}

// handleGetAllReviews returns every review as a JSON list.
// GET /getallreviews
func (h *Handlers) handleGetAllReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.All(r.Context())
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, reviews)
}

// bindReview validates the request fields and builds the review record.
func (h *Handlers) bindReview(req PostReviewRequest) (*Review, error) {
	var rv Review
	var err error

	if rv.Title, err = validate.NonEmpty(req.Title, "Title"); err != nil {
		return nil, err
	}
	if rv.Category, err = validate.NonEmpty(req.Category, "Category"); err != nil {
		return nil, err
	}
	if rv.Body, err = validate.NonEmpty(req.Review, "Review"); err != nil {
		return nil, err
	}
	if rv.Rating, err = validate.Number(req.Rating.String(), "Rating"); err != nil {
		return nil, err
	}
	if err = validate.Rating(rv.Rating, h.policy.RatingMin, h.policy.RatingMax); err != nil {
		return nil, err
	}
	return &rv, nil
}
