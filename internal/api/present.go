package api

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// recipeAction enumerates the recipe endpoints that return a recipe body
type recipeAction int

const (
	actionList recipeAction = iota
	actionRetrieve
	actionCreate
	actionUpdate
	actionFavorite
	actionShoppingCart
)

// recipeView is the response shape chosen for an action
type recipeView int

const (
	viewFull recipeView = iota
	viewShort
)

func viewFor(action recipeAction) recipeView {
	switch action {
	case actionFavorite, actionShoppingCart:
		return viewShort
	case actionList, actionRetrieve, actionCreate, actionUpdate:
		return viewFull
	default:
		return viewFull
	}
}

// recipeContext carries the per-caller data a full recipe needs
type recipeContext struct {
	flags      map[uint]service.RecipeFlags
	subscribed map[string]bool
}

func presentRecipe(action recipeAction, recipe *models.Recipe, rc recipeContext) interface{} {
	switch viewFor(action) {
	case viewShort:
		return shortRecipe(recipe)
	default:
		return fullRecipe(recipe, rc)
	}
}

func fullRecipe(recipe *models.Recipe, rc recipeContext) types.RecipeResponse {
	flags := rc.flags[recipe.ID]
	resp := types.RecipeResponse{
		ID:               recipe.ID,
		Tags:             make([]types.TagResponse, 0, len(recipe.Tags)),
		Author:           userResponse(&recipe.Author, rc.subscribed[recipe.AuthorID.String()]),
		Ingredients:      make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
		IsFavorited:      flags.IsFavorited,
		IsInShoppingCart: flags.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, tagResponse(&tag))
	}
	for _, ri := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, types.RecipeIngredientResponse{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return resp
}

func shortRecipe(recipe *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func userResponse(user *models.User, subscribed bool) types.UserResponse {
	resp := types.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
	if user.Avatar != "" {
		avatar := user.Avatar
		resp.Avatar = &avatar
	}
	return resp
}

func subscriptionResponse(author *models.User, recipes []models.Recipe, total int64) types.SubscriptionResponse {
	resp := types.SubscriptionResponse{
		UserResponse: userResponse(author, true),
		Recipes:      make([]types.RecipeShortResponse, 0, len(recipes)),
		RecipesCount: total,
	}
	for i := range recipes {
		resp.Recipes = append(resp.Recipes, shortRecipe(&recipes[i]))
	}
	return resp
}

func tagResponse(tag *models.Tag) types.TagResponse {
	return types.TagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
}

func ingredientResponse(ingredient *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
