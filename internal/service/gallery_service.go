package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// GalleryService handles gallery CRUD.
type GalleryService struct {
	Collection[db.GalleryItem]
}

// GalleryInput represents fields accepted when creating or updating a gallery item.
type GalleryInput struct {
	Title        string
	MediaURL     string
	MediaType    string
	ThumbnailURL string
	Category     string
	OrderingInput
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB) *GalleryService {
	return &GalleryService{Collection: newCollection[db.GalleryItem](gdb)}
}

// ListActiveByCategory returns visible items, optionally narrowed to one category and media type.
func (s *GalleryService) ListActiveByCategory(category, mediaType string) ([]db.GalleryItem, error) {
	query := s.db.Where("is_active = ?", true)
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}
	if mediaType = strings.ToLower(strings.TrimSpace(mediaType)); mediaType != "" {
		query = query.Where("media_type = ?", mediaType)
	}

	var items []db.GalleryItem
	if err := s.ordered(query).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Categories returns distinct categories of visible items.
func (s *GalleryService) Categories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&db.GalleryItem{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create inserts a new gallery item.
func (s *GalleryService) Create(input GalleryInput) (*db.GalleryItem, error) {
	var item db.GalleryItem
	if err := s.apply(&item, input, true); err != nil {
		return nil, err
	}
	return s.create(&item)
}

// Update modifies an existing gallery item.
func (s *GalleryService) Update(id uint, input GalleryInput) (*db.GalleryItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input, false); err != nil {
		return nil, err
	}
	return s.save(item)
}

func (s *GalleryService) apply(item *db.GalleryItem, input GalleryInput, creating bool) error {
	if err := firstError(
		required("title", input.Title),
		required("media_url", input.MediaURL),
	); err != nil {
		return err
	}

	mediaType := strings.ToLower(strings.TrimSpace(input.MediaType))
	if mediaType == "" {
		mediaType = db.MediaTypeImage
	}
	if mediaType != db.MediaTypeImage && mediaType != db.MediaTypeVideo {
		return invalid("media_type", "must be image or video")
	}

	item.Title = strings.TrimSpace(input.Title)
	item.MediaURL = strings.TrimSpace(input.MediaURL)
	item.MediaType = mediaType
	item.ThumbnailURL = strings.TrimSpace(input.ThumbnailURL)
	item.Category = strings.TrimSpace(input.Category)
	if mediaType == db.MediaTypeVideo {
		if embed, ok := ParseVideoURL(item.MediaURL); ok {
			item.MediaURL = embed.EmbedURL
			if item.ThumbnailURL == "" {
				item.ThumbnailURL = embed.ThumbnailURL
			}
		}
	}
	return s.applyOrdering(&item.Ordering, input.OrderingInput, creating)
}
