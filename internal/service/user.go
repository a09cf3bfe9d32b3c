package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

const (
	msgSelfSubscribe     = "Нельзя подписаться на самого себя"
	msgAlreadySubscribed = "Вы уже подписаны на этого пользователя."
	msgNotSubscribed     = "Вы не подписаны на этого пользователя."
)

type UserService struct {
	db     *gorm.DB
	images IImageStore
}

func NewUserService(db *gorm.DB, images IImageStore) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// IsSubscribed reports whether userID follows authorID. Anonymous callers
// (uuid.Nil) are never subscribed.
func (s *UserService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return count > 0, nil
}

// SetAvatar stores the image and records its URL, replacing any previous avatar
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURL string) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, "users", dataURL)
	if err != nil {
		return "", err
	}
	// Update writes the new value back into user
	old := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		s.dropImage(ctx, url)
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}
	s.dropImage(ctx, old)
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	old := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.dropImage(ctx, old)
	return nil
}

func (s *UserService) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete old image")
	}
}

// Subscribe makes userID follow authorID and returns the author
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	author, err := s.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, newDomainError(ErrValidation, msgSelfSubscribe)
	}

	sub := &models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Omit("User", "Author").Create(sub).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, newDomainError(ErrDuplicate, msgAlreadySubscribed)
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return author, nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if _, err := s.GetUser(ctx, authorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return newDomainError(ErrValidation, msgNotSubscribed)
	}
	return nil
}

// Subscriptions lists the authors userID follows, ordered by username
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	authors := make([]models.User, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("users.username").
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return authors, nil
}

// AuthorRecipes returns up to limit of the author's newest recipes and the
// author's total recipe count. A non-positive limit returns every recipe.
func (s *UserService) AuthorRecipes(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := make([]models.Recipe, 0)
	q := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}
