// internal/search/indexer.go

// Package search publishes match computations to Elasticsearch so
// coordinators can look up past rankings for a referral.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"placement-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// MatchDocument is one stored match computation.
type MatchDocument struct {
	ReferralID    string             `json:"referralId"`
	ComputedAt    time.Time          `json:"computedAt"`
	TotalHomes    int                `json:"totalHomes"`
	EligibleCount int                `json:"eligibleCount"`
	TopHomeID     string             `json:"topHomeId,omitempty"`
	DoLApplies    bool               `json:"dolApplies"`
	Matches       []models.HomeMatch `json:"matches"`
}

type MatchIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewMatchIndexer(client *elasticsearch.Client, index string) *MatchIndexer {
	return &MatchIndexer{client: client, index: index}
}

func (i *MatchIndexer) IndexName() string {
	return i.index
}

const matchMapping = `{
  "mappings": {
    "properties": {
      "referralId":    {"type": "keyword"},
      "computedAt":    {"type": "date"},
      "totalHomes":    {"type": "integer"},
      "eligibleCount": {"type": "integer"},
      "topHomeId":     {"type": "keyword"},
      "dolApplies":    {"type": "boolean"},
      "matches":       {"type": "object", "enabled": false}
    }
  }
}`

// EnsureIndex creates the match index with its mapping when it does not
// exist yet.
func (i *MatchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case 200:
		return nil
	case 404:
	default:
		return fmt.Errorf("check index %s: %s", i.index, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(matchMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	// a concurrent manager may have created it first
	if res.IsError() && !strings.Contains(readError(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", i.index, res.Status())
	}
	return nil
}

func readError(body io.Reader) string {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return string(bytes.TrimSpace(msg))
}

// Index stores doc and returns the generated document id.
func (i *MatchIndexer) Index(ctx context.Context, doc MatchDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode match document: %w", err)
	}

	docID := uuid.New().String()
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return "", fmt.Errorf("index match document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("index match document: %s: %s", res.Status(), readError(res.Body))
	}

	return docID, nil
}
