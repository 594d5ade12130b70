package repository

import (
	"context"
	"errors"
	"strings"

	"pictweet/internal/models"

	"gorm.io/gorm"
)

// TweetRepository defines the interface for tweet data operations.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	// List returns all tweets newest-first. A non-empty query narrows the
	// result to tweets whose text contains it, case-insensitively.
	List(ctx context.Context, query string) ([]*models.Tweet, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Tweet, error)
	Update(ctx context.Context, tweet *models.Tweet) error
	// Delete removes the tweet and its comments in one transaction.
	Delete(ctx context.Context, id uint) error
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).Preload("User").First(&tweet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tweet", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tweet, nil
}

func (r *tweetRepository) List(ctx context.Context, query string) ([]*models.Tweet, error) {
	db := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if q := strings.TrimSpace(query); q != "" {
		// LOWER + LIKE keeps the match case-insensitive on both sqlite
		// and postgres.
		db = db.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var tweets []*models.Tweet
	if err := db.Find(&tweets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweets, nil
}

func (r *tweetRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tweets).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweets, nil
}

func (r *tweetRepository) Update(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Save(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tweet models.Tweet
		if err := tx.First(&tweet, id).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tweet{}, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Tweet", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
