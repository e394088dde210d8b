package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"toolpick.GO/config"
	"toolpick.GO/core/cache"
	catalogEntity "toolpick.GO/model/entity/catalog"
)

const (
	// fetchPageSize is the page size for full catalog scans.
	fetchPageSize = 1000
	// upsertBatchSize caps rows per insert statement.
	upsertBatchSize = 50

	cacheTTLSeconds = 60
	cacheTag        = "catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FetchAll loads the whole catalog keyed by part number, paging through the
// table so a large catalog never materializes in one query.
func (r *CatalogRepository) FetchAll() (map[string]catalogEntity.PartsCatalogItem, error) {
	result := make(map[string]catalogEntity.PartsCatalogItem)
	for offset := 0; ; offset += fetchPageSize {
		var page []catalogEntity.PartsCatalogItem
		err := r.db.Order("part_number").Limit(fetchPageSize).Offset(offset).Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("fetch catalog page at %d: %w", offset, err)
		}
		for _, item := range page {
			result[item.PartNumber] = item
		}
		if len(page) < fetchPageSize {
			return result, nil
		}
	}
}

// Get returns one catalog item, read-through cached: redis when configured,
// the in-process cache otherwise.
func (r *CatalogRepository) Get(partNumber string) (*catalogEntity.PartsCatalogItem, error) {
	key := "catalog:part:" + partNumber

	if config.RedisClient != nil {
		if raw, err := config.RedisClient.Get(config.RedisCtx(), key).Result(); err == nil {
			var item catalogEntity.PartsCatalogItem
			if json.Unmarshal([]byte(raw), &item) == nil {
				return &item, nil
			}
		}
	} else if v, ok := cache.GetInstance().Get(key); ok {
		if item, isItem := v.(catalogEntity.PartsCatalogItem); isItem {
			return &item, nil
		}
	}

	var item catalogEntity.PartsCatalogItem
	if err := r.db.First(&item, "part_number = ?", partNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if config.RedisClient != nil {
		if raw, err := json.Marshal(item); err == nil {
			config.RedisClient.Set(config.RedisCtx(), key, raw, cacheTTLSeconds*time.Second)
		}
	} else {
		cache.GetInstance().Set(key, item, cacheTTLSeconds, []string{cacheTag})
	}
	return &item, nil
}

// Search matches part numbers and descriptions with a LIKE scan; the
// search service prefers Elasticsearch and falls back to this.
func (r *CatalogRepository) Search(query string, limit int) ([]catalogEntity.PartsCatalogItem, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	var items []catalogEntity.PartsCatalogItem
	err := r.db.
		Where("part_number LIKE ? OR description LIKE ?", pattern, pattern).
		Order("part_number").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// UpsertNew inserts catalog items that do not exist yet, leaving existing
// rows untouched. Returns how many rows were actually created.
func (r *CatalogRepository) UpsertNew(items []catalogEntity.PartsCatalogItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	created := 0
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_number"}},
		DoNothing: true,
	}
	for i := 0; i < len(items); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[i:end]
		tx := r.db.Clauses(onConflict).Create(&chunk)
		if tx.Error != nil {
			return created, fmt.Errorf("upsert catalog batch %d: %w", i/upsertBatchSize, tx.Error)
		}
		created += int(tx.RowsAffected)
	}
	r.invalidate(items)
	return created, nil
}

// ApplyUpdate overwrites one part's description and default location with
// values taken from a newer import.
func (r *CatalogRepository) ApplyUpdate(partNumber, description, location string) error {
	err := r.db.Model(&catalogEntity.PartsCatalogItem{}).
		Where("part_number = ?", partNumber).
		Updates(map[string]interface{}{
			"description":      description,
			"default_location": location,
		}).Error
	if err != nil {
		return err
	}
	r.invalidate([]catalogEntity.PartsCatalogItem{{PartNumber: partNumber}})
	return nil
}

func (r *CatalogRepository) invalidate(items []catalogEntity.PartsCatalogItem) {
	if config.RedisClient != nil {
		keys := make([]string, 0, len(items))
		for _, item := range items {
			keys = append(keys, "catalog:part:"+item.PartNumber)
		}
		if len(keys) > 0 {
			config.RedisClient.Del(config.RedisCtx(), keys...)
		}
		return
	}
	cache.GetInstance().DeleteByTag(cacheTag)
}
