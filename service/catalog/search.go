package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	catalogEntity "toolpick.GO/model/entity/catalog"
	catalogRepo "toolpick.GO/model/repository/catalog"
)

var (
	searchServiceInstance *SearchService
	searchServiceOnce     sync.Once
)

// GetSearchService returns singleton SearchService.
func GetSearchService() *SearchService {
	searchServiceOnce.Do(func() {
		searchServiceInstance = NewSearchService()
	})
	return searchServiceInstance
}

type SearchService struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchService() *SearchService {
	host := os.Getenv("ELASTICSEARCH_HOST")
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "toolpick"
	}
	index := prefix + "_parts"

	if host == "" {
		return &SearchService{index: index}
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{host},
	})
	if err != nil {
		return &SearchService{index: index}
	}
	return &SearchService{client: client, index: index}
}

// Search queries the parts index; when Elasticsearch is unreachable or
// unconfigured it falls back to a LIKE scan on the catalog table.
func (s *SearchService) Search(ctx context.Context, query string, limit int, repo *catalogRepo.CatalogRepository) ([]catalogEntity.PartsCatalogItem, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.client == nil {
		return repo.Search(query, limit)
	}

	items, err := s.searchES(ctx, query, limit)
	if err != nil {
		return repo.Search(query, limit)
	}
	return items, nil
}

func (s *SearchService) searchES(ctx context.Context, query string, limit int) ([]catalogEntity.PartsCatalogItem, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"part_number^3", "description"},
			},
		},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source catalogEntity.PartsCatalogItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	items := make([]catalogEntity.PartsCatalogItem, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		items = append(items, hit.Source)
	}
	return items, nil
}
