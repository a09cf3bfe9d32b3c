package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"
)

// fuzzyLimit caps the number of fuzzy fallback matches
const fuzzyLimit = 20

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

type ingredientSource []models.Ingredient

func (s ingredientSource) String(i int) string { return s[i].Name }
func (s ingredientSource) Len() int            { return len(s) }

// SearchIngredients returns ingredients whose name starts with name, case
// insensitively. When no name matches by prefix, the catalogue is ranked with a
// fuzzy matcher so typos and partial words still find something.
func (s *IngredientService) SearchIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	name = strings.TrimSpace(name)
	ingredients := make([]models.Ingredient, 0)
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if name == "" {
		if err := q.Find(&ingredients).Error; err != nil {
			return nil, fmt.Errorf("failed to list ingredients: %w", err)
		}
		return ingredients, nil
	}

	// SQLite LOWER only folds ASCII, so prefix matching is done here
	var all []models.Ingredient
	if err := q.Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	prefix := strings.ToLower(name)
	for _, ing := range all {
		if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) > 0 {
		return ingredients, nil
	}

	matches := fuzzy.FindFrom(name, ingredientSource(all))
	for i, m := range matches {
		if i == fuzzyLimit {
			break
		}
		ingredients = append(ingredients, all[m.Index])
	}
	return ingredients, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ingredient, nil
}
