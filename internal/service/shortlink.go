package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"gorm.io/gorm"
)

// DefaultShortLinkCacheSize bounds the resolved-code cache
const DefaultShortLinkCacheSize = 1024

// ShortLinkService issues public short links and resolves them back to recipes
type ShortLinkService struct {
	db      *gorm.DB
	baseURL string
	cache   *lru.Cache
	codes   shortcode.Allocator
}

func NewShortLinkService(db *gorm.DB, baseURL string, cacheSize int) (*ShortLinkService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultShortLinkCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create short link cache: %w", err)
	}
	return &ShortLinkService{
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
		codes:   shortcode.DefaultAllocator,
	}, nil
}

// ShortLink returns the absolute short URL of a recipe, assigning a code to
// recipes created before codes existed.
func (s *ShortLinkService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "short_code").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load recipe: %w", err)
	}

	code := ""
	if recipe.ShortCode != nil {
		code = *recipe.ShortCode
	} else {
		var err error
		if code, err = s.assign(ctx, recipe.ID); err != nil {
			return "", err
		}
	}
	return s.URL(code), nil
}

// URL formats the public link for code
func (s *ShortLinkService) URL(code string) string {
	return s.baseURL + "/r/" + code + "/"
}

// Resolve maps a short code to a recipe id. Stored codes win; otherwise the
// code is read as a base-62 recipe id. Only stored codes are cached.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uint, error) {
	if v, ok := s.cache.Get(code); ok {
		return v.(uint), nil
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id").Where("short_code = ?", code).Take(&recipe).Error
	switch {
	case err == nil:
		s.cache.Add(code, recipe.ID)
		return recipe.ID, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, fmt.Errorf("failed to resolve short code: %w", err)
	}

	id, err := shortcode.Decode(code)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, ErrNotFound
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", uint(id)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to resolve recipe id: %w", err)
	}
	if count == 0 {
		return 0, ErrNotFound
	}
	return uint(id), nil
}

// Forget drops cached codes pointing at recipeID
func (s *ShortLinkService) Forget(recipeID uint) {
	for _, key := range s.cache.Keys() {
		if v, ok := s.cache.Peek(key); ok && v.(uint) == recipeID {
			s.cache.Remove(key)
		}
	}
}

// Backfill assigns codes to every recipe that lacks one and returns how many
// were assigned.
func (s *ShortLinkService) Backfill(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("short_code IS NULL").Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list recipes without short code: %w", err)
	}

	assigned := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return assigned, err
		}
		if _, err := s.assign(ctx, id); err != nil {
			return assigned, fmt.Errorf("failed to assign short code to recipe %d: %w", id, err)
		}
		assigned++
	}
	logging.Info().Int("assigned", assigned).Msg("short code backfill finished")
	return assigned, nil
}

// assign sets a fresh code on a recipe that has none. If another writer got
// there first, its code is returned.
func (s *ShortLinkService) assign(ctx context.Context, recipeID uint) (string, error) {
	raced := false
	code, err := s.codes.Allocate(func(code string) (bool, error) {
		res := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("id = ? AND short_code IS NULL", recipeID).
			Update("short_code", code)
		if database.IsUniqueViolation(res.Error) {
			return true, nil
		}
		if res.Error != nil {
			return false, res.Error
		}
		raced = res.RowsAffected == 0
		return false, nil
	})
	if err != nil {
		return "", err
	}
	if !raced {
		return code, nil
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "short_code").First(&recipe, recipeID).Error; err != nil {
		return "", fmt.Errorf("failed to reload recipe: %w", err)
	}
	if recipe.ShortCode == nil {
		return "", ErrNotFound
	}
	return *recipe.ShortCode, nil
}
