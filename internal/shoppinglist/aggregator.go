package shoppinglist

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Aggregator sums ingredient amounts across the recipes in a user's cart.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Aggregate returns one Item per (ingredient name, unit) pair in the user's
// cart. An empty cart yields an empty, non-nil slice.
func (a *Aggregator) Aggregate(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items := make([]Item, 0)
	err := a.db.WithContext(ctx).
		Table("shopping_cart_entries AS c").
		Select("i.name AS name, i.measurement_unit AS unit, CAST(SUM(ri.amount) AS BIGINT) AS total").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("c.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping cart: %w", err)
	}
	if items == nil {
		items = make([]Item, 0)
	}
	Sort(items)
	return items, nil
}

// Sort orders items by name using Russian collation, then by unit.
func Sort(items []Item) {
	c := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(items[i].Name, items[j].Name); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(items[i].Unit, items[j].Unit) < 0
	})
}
