package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/shopease/app/models"
	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/orm"
	"github.com/shashiranjanraj/shopease/pkg/storage"
)

const (
	catalogVersionKey = "catalog:version"
	catalogTTL        = 5 * time.Minute

	// MaxImageBytes caps a product image upload.
	MaxImageBytes = 5 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ProductInput is the create payload.
type ProductInput struct {
	Name           string        `json:"name"           validate:"required,max=255"`
	Description    string        `json:"description"`
	Price          float64       `json:"price"          validate:"gte=0"`
	OriginalPrice  *float64      `json:"originalPrice"  validate:"gte=0"`
	Image          string        `json:"image"`
	Images         []string      `json:"images"`
	Category       string        `json:"category"       validate:"max=100"`
	Brand          string        `json:"brand"          validate:"max=100"`
	Stock          int           `json:"stock"          validate:"gte=0"`
	Rating         float64       `json:"rating"         validate:"gte=0,lte=5"`
	Features       []string      `json:"features"`
	Specifications []models.Spec `json:"specifications"`
}

// ProductPatch is the partial update payload; nil fields are kept.
type ProductPatch struct {
	Name           *string        `json:"name"           validate:"filled,max=255"`
	Description    *string        `json:"description"`
	Price          *float64       `json:"price"          validate:"gte=0"`
	OriginalPrice  *float64       `json:"originalPrice"  validate:"gte=0"`
	Image          *string        `json:"image"`
	Images         *[]string      `json:"images"`
	Category       *string        `json:"category"       validate:"max=100"`
	Brand          *string        `json:"brand"          validate:"max=100"`
	Stock          *int           `json:"stock"          validate:"gte=0"`
	Rating         *float64       `json:"rating"         validate:"gte=0,lte=5"`
	Features       *[]string      `json:"features"`
	Specifications *[]models.Spec `json:"specifications"`
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Items      []models.Product `json:"items"`
	Pagination orm.Pagination   `json:"pagination"`
}

type ProductService struct {
	products repositories.ProductRepository
	disk     func() storage.Disk
}

func NewProductService(products repositories.ProductRepository, disk func() storage.Disk) *ProductService {
	if disk == nil {
		disk = storage.Default
	}
	return &ProductService{products: products, disk: disk}
}

// Normalize clamps paging and drops unknown sort keys.
func Normalize(f repositories.ProductFilter) repositories.ProductFilter {
	f.Page, f.Limit = orm.Clamp(f.Page, f.Limit, 8, 100)
	f.Category = strings.TrimSpace(f.Category)
	f.Brand = strings.TrimSpace(f.Brand)
	f.Search = strings.TrimSpace(f.Search)
	switch f.Sort {
	case repositories.SortPriceLow, repositories.SortPriceHigh, repositories.SortRating, repositories.SortPopular:
	default:
		f.Sort = repositories.SortNewest
	}
	return f
}

func (s *ProductService) version(ctx context.Context) int64 {
	var v int64
	cache.Get(ctx, catalogVersionKey, &v)
	return v
}

// invalidate bumps the catalog version so every cached listing goes stale.
func (s *ProductService) invalidate(ctx context.Context) {
	if _, err := cache.Incr(ctx, catalogVersionKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidation failed", "error", err)
	}
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) (*ProductPage, error) {
	f = Normalize(f)
	raw, _ := json.Marshal(f)
	sum := sha1.Sum(raw)
	key := fmt.Sprintf("catalog:v%d:list:%s", s.version(ctx), hex.EncodeToString(sum[:]))

	page, err := cache.Remember(ctx, key, catalogTTL, func() (*ProductPage, error) {
		items, total, err := s.products.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Product{}
		}
		return &ProductPage{Items: items, Pagination: orm.NewPagination(f.Page, f.Limit, total)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

func (s *ProductService) Facets(ctx context.Context) (repositories.Facets, error) {
	key := fmt.Sprintf("catalog:v%d:facets", s.version(ctx))
	f, err := cache.Remember(ctx, key, catalogTTL, func() (repositories.Facets, error) {
		return s.products.Facets(ctx)
	})
	if err != nil {
		return repositories.Facets{}, fmt.Errorf("facets: %w", err)
	}
	return f, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.OriginalPrice != nil && *in.OriginalPrice < in.Price {
		return nil, errOriginalPrice
	}
	p := &models.Product{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		OriginalPrice:  in.OriginalPrice,
		Image:          in.Image,
		Images:         in.Images,
		Category:       strings.TrimSpace(in.Category),
		Brand:          strings.TrimSpace(in.Brand),
		Stock:          in.Stock,
		Rating:         in.Rating,
		Features:       in.Features,
		Specifications: in.Specifications,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID)
	return p, nil
}

// Update writes only the fields present in the patch. The price rule is
// checked against the product as it would look after the patch.
func (s *ProductService) Update(ctx context.Context, id string, in ProductPatch) (*models.Product, error) {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	changes := in.changes()
	merged := *current
	changes.Apply(&merged)
	if merged.OriginalPrice != nil && *merged.OriginalPrice < merged.Price {
		return nil, errOriginalPrice
	}

	if err := s.products.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

func (in ProductPatch) changes() repositories.ProductChanges {
	return repositories.ProductChanges{
		Name:           trimmed(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		OriginalPrice:  in.OriginalPrice,
		Image:          in.Image,
		Images:         in.Images,
		Category:       trimmed(in.Category),
		Brand:          trimmed(in.Brand),
		Stock:          in.Stock,
		Rating:         in.Rating,
		Features:       in.Features,
		Specifications: in.Specifications,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx)

	if err := s.disk().DeletePrefix(ctx, "products/"+id); err != nil {
		logger.WithCtx(ctx).Warn("product images not removed", "product_id", id, "error", err)
	}
	return nil
}

// UploadImage stores an image for the product and makes it the primary one.
// The content type is sniffed, never trusted from the client.
func (s *ProductService) UploadImage(ctx context.Context, id string, r io.Reader) (*models.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrInvalidImage
	}

	disk := s.disk()
	path := fmt.Sprintf("products/%s/%s.%s", id, models.NewID(), ext)
	if err := disk.Put(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := s.products.AddImage(ctx, id, disk.URL(path)); err != nil {
		_ = disk.Delete(ctx, path)
		return nil, fmt.Errorf("upload image: %w", err)
	}
	s.invalidate(ctx)

	logger.WithCtx(ctx).Info("product image stored", "product_id", id, "disk", disk.Name(), "path", path)
	return s.Get(ctx, id)
}
