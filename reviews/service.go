package reviews

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/microcosm-cc/bluemonday"

	"github.com/user/reviewboard-go/apperror"
)

// ReviewService is the call surface the handlers depend on.
type ReviewService interface {
	Post(ctx context.Context, review Review) (*Review, error)
	All(ctx context.Context) ([]Review, error)
}

// PostgresReviewService implements ReviewService over a pgx pool. Review
// bodies are sanitized before storage so stored content is safe to render
// verbatim.
type PostgresReviewService struct {
	db        *pgxpool.Pool
	sanitizer *bluemonday.Policy
}

// NewPostgresReviewService creates a PostgresReviewService.
func NewPostgresReviewService(db *pgxpool.Pool) *PostgresReviewService {
	return &PostgresReviewService{
		db: db,
		// StrictPolicy strips all HTML; reviews are plain text.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Post sanitizes and stores a review, returning the stored record.
func (s *PostgresReviewService) Post(ctx context.Context, review Review) (*Review, error) {
	review.Title = s.sanitizer.Sanitize(review.Title)
	review.Category = s.sanitizer.Sanitize(review.Category)
	review.Body = s.sanitizer.Sanitize(review.Body)

	query := `INSERT INTO reviews (user_id, title, category, body, rating)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query,
		review.UserID, review.Title, review.Category, review.Body, review.Rating,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to post review", err)
	}
	return &review, nil
}

// All returns every review, newest first. Unfiltered and unpaginated.
func (s *PostgresReviewService) All(ctx context.Context) ([]Review, error) {
	query := `SELECT id, user_id, title, category, body, rating, created_at
	          FROM reviews
	          ORDER BY created_at DESC, id DESC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Title, &rv.Category, &rv.Body, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan review", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list reviews", err)
	}
	return reviews, nil
}

var _ ReviewService = (*PostgresReviewService)(nil)
