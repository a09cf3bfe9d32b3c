package shoppinglist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	shopper := testhelpers.CreateUser(t, db, "shopper")
	other := testhelpers.CreateUser(t, db, "other")

	flour := testhelpers.CreateIngredient(t, db, "Мука", "г")
	egg := testhelpers.CreateIngredient(t, db, "Яйцо", "шт")
	milk := testhelpers.CreateIngredient(t, db, "Молоко", "мл")

	pancakes := testhelpers.CreateRecipe(t, db, author, "Блины",
		testhelpers.Amount{Ingredient: flour, Amount: 100},
		testhelpers.Amount{Ingredient: egg, Amount: 1},
	)
	crepes := testhelpers.CreateRecipe(t, db, author, "Оладьи",
		testhelpers.Amount{Ingredient: flour, Amount: 50},
		testhelpers.Amount{Ingredient: egg, Amount: 1},
		testhelpers.Amount{Ingredient: milk, Amount: 200},
	)
	testhelpers.AddToCart(t, db, shopper, pancakes)
	testhelpers.AddToCart(t, db, shopper, crepes)
	testhelpers.AddToCart(t, db, other, pancakes)

	items, err := NewAggregator(db).Aggregate(context.Background(), shopper.ID)
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{Name: "Молоко", Unit: "мл", Total: 200},
		{Name: "Мука", Unit: "г", Total: 150},
		{Name: "Яйцо", Unit: "шт", Total: 2},
	}, items)

	otherItems, err := NewAggregator(db).Aggregate(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "Мука", Unit: "г", Total: 100},
		{Name: "Яйцо", Unit: "шт", Total: 1},
	}, otherItems)
}

func TestAggregateKeepsUnitsApart(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "author")
	sugarGrams := testhelpers.CreateIngredient(t, db, "Сахар", "г")
	sugarSpoons := testhelpers.CreateIngredient(t, db, "Сахар", "ст. л.")

	first := testhelpers.CreateRecipe(t, db, author, "Пирог",
		testhelpers.Amount{Ingredient: sugarGrams, Amount: 120})
	second := testhelpers.CreateRecipe(t, db, author, "Чай",
		testhelpers.Amount{Ingredient: sugarSpoons, Amount: 2})
	third := testhelpers.CreateRecipe(t, db, author, "Кекс",
		testhelpers.Amount{Ingredient: sugarGrams, Amount: 80})
	testhelpers.AddToCart(t, db, author, first)
	testhelpers.AddToCart(t, db, author, second)
	testhelpers.AddToCart(t, db, author, third)

	items, err := NewAggregator(db).Aggregate(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "Сахар", Unit: "г", Total: 200},
		{Name: "Сахар", Unit: "ст. л.", Total: 2},
	}, items)
}

func TestAggregateEmptyCart(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)

	items, err := NewAggregator(db).Aggregate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSortUsesCollation(t *testing.T) {
	items := []Item{
		{Name: "яблоко", Unit: "шт"},
		{Name: "Ёжевика", Unit: "г"},
		{Name: "апельсин", Unit: "шт"},
		{Name: "Банан", Unit: "шт"},
	}
	Sort(items)

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	assert.Equal(t, []string{"апельсин", "Банан", "Ёжевика", "яблоко"}, names)
}
