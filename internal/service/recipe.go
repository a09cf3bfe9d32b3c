package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows ListRecipes. Zero values disable a filter.
type RecipeFilter struct {
	Tags        []string
	AuthorID    uuid.UUID
	FavoritedBy uuid.UUID
	InCartOf    uuid.UUID
}

// RecipeFlags are the per-user markers shown on a recipe
type RecipeFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService struct {
	db        *gorm.DB
	images    IImageStore
	links     IShortLinkService
	favorites *RelationStore[models.FavoriteEntry]
	cart      *RelationStore[models.ShoppingCartEntry]
	codes     shortcode.Allocator
}

func NewRecipeService(db *gorm.DB, images IImageStore, links IShortLinkService) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		links:     links,
		favorites: NewFavoriteStore(db),
		cart:      NewCartStore(db),
		codes:     shortcode.DefaultAllocator,
	}
}

// WithCodeGenerator replaces the short code source
func (s *RecipeService) WithCodeGenerator(generate func() (string, error)) *RecipeService {
	s.codes = shortcode.Allocator{Generate: generate}
	return s
}

// CreateRecipe validates the request, stores the image and inserts the recipe
// with a freshly allocated short code.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	if req.Image == "" {
		return nil, newFieldError("image", "Обязательное поле.")
	}
	if req.ShortCode != "" && !shortcode.Valid(req.ShortCode) {
		return nil, newFieldError("short_code", "Код должен состоять из 7 символов A-Z0-9.")
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, "recipes", req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.insert(tx, recipe, req.ShortCode); err != nil {
			return err
		}
		return s.writeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		s.dropImage(ctx, image)
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Str("short_code", *recipe.ShortCode).Msg("recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

// insert creates the recipe row. A pinned code gets one attempt; otherwise
// candidates are drawn until one is free or attempts run out.
func (s *RecipeService) insert(tx *gorm.DB, recipe *models.Recipe, pinned string) error {
	try := func(code string) (bool, error) {
		recipe.ID = 0
		recipe.ShortCode = &code
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Omit(clause.Associations).Create(recipe).Error
		})
		if database.IsUniqueViolation(err) {
			return true, nil
		}
		return false, err
	}

	if pinned != "" {
		taken, err := try(pinned)
		if err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if taken {
			return newFieldError("short_code", "Рецепт с таким кодом уже существует.")
		}
		return nil
	}

	if _, err := s.codes.Allocate(try); err != nil {
		if errors.Is(err, shortcode.ErrShortCodeExhausted) {
			return err
		}
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (s *RecipeService) writeLinks(tx *gorm.DB, recipeID uint, req *types.RecipeRequest) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	links := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		links = append(links, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit("Ingredient").Create(&links).Error; err != nil {
		return fmt.Errorf("failed to save ingredients: %w", err)
	}

	for _, tagID := range req.Tags {
		if err := tx.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipeID, tagID).Error; err != nil {
			return fmt.Errorf("failed to save tags: %w", err)
		}
	}
	return nil
}

// validate checks the parts of a recipe request that need the database or
// cannot be expressed as binding rules.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest) error {
	if req.CookingTime < models.CookingTimeMin || req.CookingTime > models.CookingTimeMax {
		return newFieldError("cooking_time", fmt.Sprintf("Время приготовления должно быть от %d до %d минут.", models.CookingTimeMin, models.CookingTimeMax))
	}

	if len(req.Ingredients) == 0 {
		return newFieldError("ingredients", "Нужен хотя бы один ингредиент.")
	}
	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	seenIngredients := make(map[uint]struct{}, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return newFieldError("ingredients", "Ингредиенты не должны повторяться.")
		}
		if item.Amount < models.AmountMin || item.Amount > models.AmountMax {
			return newFieldError("ingredients", fmt.Sprintf("Количество должно быть от %d до %d.", models.AmountMin, models.AmountMax))
		}
		seenIngredients[item.ID] = struct{}{}
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	if missing, err := s.missingIDs(ctx, &models.Ingredient{}, ingredientIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		return newFieldError("ingredients", fmt.Sprintf("Ингредиент с id=%d не существует.", missing[0]))
	}

	if len(req.Tags) == 0 {
		return newFieldError("tags", "Нужен хотя бы один тег.")
	}
	seenTags := make(map[uint]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return newFieldError("tags", "Теги не должны повторяться.")
		}
		seenTags[id] = struct{}{}
	}
	if missing, err := s.missingIDs(ctx, &models.Tag{}, req.Tags); err != nil {
		return err
	} else if len(missing) > 0 {
		return newFieldError("tags", fmt.Sprintf("Тег с id=%d не существует.", missing[0]))
	}
	return nil
}

func (s *RecipeService) missingIDs(ctx context.Context, model interface{}, ids []uint) ([]uint, error) {
	var found []uint
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to check references: %w", err)
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *RecipeService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.preloaded(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// owned loads a recipe and checks that userID wrote it
func (s *RecipeService) owned(ctx context.Context, userID uuid.UUID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe fields, tags and ingredients. The image is
// only replaced when the request carries one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID uuid.UUID, id uint, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	image := oldImage
	if req.Image != "" {
		if image, err = s.images.Save(ctx, "recipes", req.Image); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        image,
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return s.writeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		if image != oldImage {
			s.dropImage(ctx, image)
		}
		return nil, err
	}
	if image != oldImage {
		s.dropImage(ctx, oldImage)
	}
	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes the recipe together with every row referencing it
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID uuid.UUID, id uint) error {
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.ShoppingCartEntry{}, &models.FavoriteEntry{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe links: %w", err)
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.links != nil {
		s.links.Forget(id)
	}
	s.dropImage(ctx, recipe.Image)
	return nil
}

// ListRecipes returns recipes newest first
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	q := s.preloaded(ctx).Model(&models.Recipe{})
	if len(filter.Tags) > 0 {
		q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags))
	}
	if filter.AuthorID != uuid.Nil {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if filter.FavoritedBy != uuid.Nil {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.FavoriteEntry{}).
			Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != uuid.Nil {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCartEntry{}).
			Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}

	recipes := make([]models.Recipe, 0)
	if err := q.Order("recipes.created_at DESC").Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Flags reports favorite and cart membership of recipeIDs for userID
func (s *RecipeService) Flags(ctx context.Context, userID uuid.UUID, recipeIDs []uint) (map[uint]RecipeFlags, error) {
	flags := make(map[uint]RecipeFlags, len(recipeIDs))
	favorited, err := s.favorites.Linked(ctx, userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.Linked(ctx, userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range recipeIDs {
		flags[id] = RecipeFlags{IsFavorited: favorited[id], IsInShoppingCart: inCart[id]}
	}
	return flags, nil
}

func (s *RecipeService) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete image")
	}
}
