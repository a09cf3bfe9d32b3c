package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RelationStore toggles a (user, recipe) link stored in the table of T.
// Favorites and the shopping cart are both instances of it.
type RelationStore[T any] struct {
	db               *gorm.DB
	newEntry         func(userID uuid.UUID, recipeID uint) *T
	duplicateMessage string
	missingMessage   string
}

func NewFavoriteStore(db *gorm.DB) *RelationStore[models.FavoriteEntry] {
	return &RelationStore[models.FavoriteEntry]{
		db: db,
		newEntry: func(userID uuid.UUID, recipeID uint) *models.FavoriteEntry {
			return &models.FavoriteEntry{UserID: userID, RecipeID: recipeID}
		},
		duplicateMessage: "Рецепт уже в избранном.",
		missingMessage:   "Рецепта нет в избранном.",
	}
}

func NewCartStore(db *gorm.DB) *RelationStore[models.ShoppingCartEntry] {
	return &RelationStore[models.ShoppingCartEntry]{
		db: db,
		newEntry: func(userID uuid.UUID, recipeID uint) *models.ShoppingCartEntry {
			return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
		duplicateMessage: "Рецепт уже в списке покупок.",
		missingMessage:   "Рецепта нет в списке покупок.",
	}
}

// Add links the recipe to the user and returns the recipe
func (s *RelationStore[T]) Add(ctx context.Context, userID uuid.UUID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.Has(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newDomainError(ErrDuplicate, s.duplicateMessage)
	}

	if err := s.db.WithContext(ctx).Omit("User", "Recipe").Create(s.newEntry(userID, recipeID)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, newDomainError(ErrDuplicate, s.duplicateMessage)
		}
		return nil, fmt.Errorf("failed to add relation: %w", err)
	}
	return recipe, nil
}

// Remove unlinks the recipe. Removing a link that does not exist is a validation error.
func (s *RelationStore[T]) Remove(ctx context.Context, userID uuid.UUID, recipeID uint) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to remove relation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return newDomainError(ErrValidation, s.missingMessage)
	}
	return nil
}

func (s *RelationStore[T]) Has(ctx context.Context, userID uuid.UUID, recipeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check relation: %w", err)
	}
	return count > 0, nil
}

// Linked returns the subset of recipeIDs linked to the user
func (s *RelationStore[T]) Linked(ctx context.Context, userID uuid.UUID, recipeIDs []uint) (map[uint]bool, error) {
	linked := make(map[uint]bool, len(recipeIDs))
	if userID == uuid.Nil || len(recipeIDs) == 0 {
		return linked, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	for _, id := range ids {
		linked[id] = true
	}
	return linked, nil
}

func (s *RelationStore[T]) recipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}
