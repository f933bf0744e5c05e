// Package catalog manages products and the cached featured list.
package catalog

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/cache"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/storage"
	"github.com/princinho/storefront/utils"
)

const (
	FeaturedKey = "featured_products"
	FeaturedTTL = 10 * time.Minute

	imageFolder = "products"
)

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// Input is a new product as submitted by an admin.
type Input struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Image       string
	IsFeatured  bool
}

type Service struct {
	products Products
	featured *cache.Aside[models.Product]
	images   storage.ImageStore
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires the catalog. images may be nil, in which case new
// products must reference an already hosted image URL.
func NewService(products Products, store cache.Store, images storage.ImageStore, log *logger.Logger) *Service {
	return &Service{
		products: products,
		featured: cache.NewAside[models.Product](store, FeaturedKey, FeaturedTTL, log),
		images:   images,
		log:      log.With("component", "catalog"),
		now:      time.Now,
	}
}

// Featured returns the featured, active products and where they came from.
func (s *Service) Featured(ctx context.Context) ([]models.Product, cache.Source, error) {
	products, src, err := s.featured.Get(ctx, s.products.ListFeatured)
	if errors.Is(err, models.ErrNotFound) {
		return nil, src, apperror.NotFound("No featured products found")
	}
	if err != nil {
		return nil, src, apperror.Internal(err)
	}
	return products, src, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return products, nil
}

// Create validates and stores a product. When image is set it is uploaded
// and replaces in.Image.
func (s *Service) Create(ctx context.Context, in Input, image *multipart.FileHeader) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || in.Description == "" || in.Category == "" {
		return nil, apperror.Validation("Name, description, and category are required")
	}
	if in.Price < 0 {
		return nil, apperror.Validation("Price must not be negative")
	}
	slug := utils.GenerateSlug(in.Name)
	if slug == "" {
		return nil, apperror.Validation("Name must contain letters or digits")
	}

	now := s.now().UTC()
	p := &models.Product{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    in.Category,
		IsFeatured:  in.IsFeatured,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		if s.images == nil {
			return nil, apperror.Validation("Image uploads are not enabled")
		}
		obj, err := s.images.Upload(ctx, imageFolder, image)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedImage) {
				return nil, apperror.Validation(err.Error())
			}
			return nil, apperror.Internal(err)
		}
		p.Image = obj.URL
		p.ImagePublicID = obj.Name
	}
	if p.Image == "" {
		return nil, apperror.Validation("Image is required")
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.discardImage(ctx, p.ImagePublicID)
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperror.Conflict("A product with this name already exists")
		}
		return nil, apperror.Internal(err)
	}

	if err := s.featured.Invalidate(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	return p, nil
}

// ToggleFeatured flips the product's featured flag.
func (s *Service) ToggleFeatured(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperror.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	updated, err := s.products.SetFeatured(ctx, id, !p.IsFeatured)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperror.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.featured.Invalidate(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return apperror.NotFound("Product not found")
	}
	if err != nil {
		return apperror.Internal(err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return apperror.NotFound("Product not found")
		}
		return apperror.Internal(err)
	}
	s.discardImage(ctx, p.ImagePublicID)

	if err := s.featured.Invalidate(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) discardImage(ctx context.Context, name string) {
	if s.images == nil || name == "" {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		s.log.Warn("failed to delete product image", "object", name, "error", err)
	}
}
