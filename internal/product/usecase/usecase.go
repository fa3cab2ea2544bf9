package usecase

import (
	"context"
	"crypto/md5"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pkg/cache"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/pkg/search"
	"github.com/shoplite/pricing-service/internal/pricing"
	"github.com/shoplite/pricing-service/internal/product"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

const productsIndex = "products"

// csvHeader is the fixed import layout the catalog producer ships.
var csvHeader = []string{"NAME", "CATEGORY", "DEFAULT_PRICE", "QTY"}

type productUseCase struct {
	repo       product.Repository
	cache      *cache.RedisClient
	es         *search.Client
	floorRatio decimal.Decimal
	logger     logger.Logger
}

// NewProductUseCase wires the catalog reads and the import path. cache and
// es may be nil; both are best-effort layers over the repository.
func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, floorRatio float64, log logger.Logger) product.UseCase {
	return &productUseCase{
		repo:       repo,
		cache:      cache,
		es:         es,
		floorRatio: decimal.NewFromFloat(floorRatio),
		logger:     log,
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey := uc.listCacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Products, cached.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		items, count, err := uc.searchProducts(ctx, filters)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil && cacheKey != "" {
		payload := struct {
			Products []model.Product
			Count    int
		}{items, count}
		if data, err := json.Marshal(payload); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return items, count, nil
}

func (uc *productUseCase) searchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "category"},
			},
		},
		"from": (filters.Page - 1) * filters.PageSize,
	}
	if filters.PageSize > 0 {
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, productsIndex, q)
	if err != nil {
		return nil, 0, err
	}

	var items []model.Product
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			items = append(items, p)
		}
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" || input.Category == "" {
		return nil, fmt.Errorf("name and category are required")
	}
	if !input.DefaultPrice.IsPositive() {
		return nil, &pricing.ConfigError{Reason: "product has no default price"}
	}
	if input.TotalInventory < 0 {
		return nil, fmt.Errorf("total inventory cannot be negative")
	}

	existing, err := uc.repo.FindByNameCategory(ctx, input.Name, input.Category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("product %q already exists in category %q", input.Name, input.Category)
	}

	floor := input.PriceFloor
	if floor.IsZero() {
		floor = input.DefaultPrice.Mul(uc.floorRatio)
	}

	now := time.Now().UTC()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:         input.Name,
		Category:     input.Category,
		DefaultPrice: input.DefaultPrice,
		PriceFloor:   floor,
		// Imports start fully unreserved; the first recalculation seeds
		// the dynamic price from the default.
		TotalInventory:       input.TotalInventory,
		TotalReserved:        0,
		InventoryLevel:       pricing.InventoryVeryHigh,
		DemandLevel:          pricing.DemandLow,
		DynamicPriceDuration: input.DynamicPriceDuration,
		IsActive:             true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// ImportCSV ingests the NAME,CATEGORY,DEFAULT_PRICE,QTY catalog feed. A bad
// header rejects the whole file; bad rows are skipped and logged so one
// typo does not sink the import.
func (uc *productUseCase) ImportCSV(ctx context.Context, r io.Reader) ([]model.Product, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !equalHeader(header, csvHeader) {
		return nil, fmt.Errorf("invalid csv header: %v", header)
	}

	var imported []model.Product
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A row with the wrong column count is a bad row, not a
			// bad file.
			if errors.Is(err, csv.ErrFieldCount) {
				uc.logger.Warn("skipping malformed csv row",
					zap.Int("line", line), zap.Strings("row", row))
				continue
			}
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		price, perr := decimal.NewFromString(row[2])
		qty, qerr := strconv.ParseInt(row[3], 10, 64)
		if perr != nil || qerr != nil {
			uc.logger.Warn("skipping malformed csv row",
				zap.Int("line", line), zap.Strings("row", row))
			continue
		}

		p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
			Name:           row[0],
			Category:       row[1],
			DefaultPrice:   price,
			TotalInventory: qty,
		})
		if err != nil {
			uc.logger.Warn("skipping csv row",
				zap.Int("line", line), zap.String("name", row[0]), zap.Error(err))
			continue
		}
		imported = append(imported, *p)
	}

	return imported, nil
}

func (uc *productUseCase) RetireProduct(ctx context.Context, id string) error {
	if err := uc.repo.Retire(ctx, id); err != nil {
		return err
	}
	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productsIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"category": { "type": "keyword" },
				"default_price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productsIndex, mapping)

	if err := uc.es.Index(ctx, productsIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) listCacheKey(filters *dto.ProductFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data))
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "products:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
