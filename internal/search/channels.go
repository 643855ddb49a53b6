// Package search indexes channels in Elasticsearch and queries them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/videotube/internal/models"
)

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type ChannelIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewChannelIndex(es *elasticsearch.Client, index string) *ChannelIndex {
	return &ChannelIndex{ES: es, Index: index}
}

// IndexChannel upserts doc under its user id.
func (ci *ChannelIndex) IndexChannel(ctx context.Context, doc models.ChannelDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: encode channel: %w", err)
	}

	res, err := ci.ES.Index(
		ci.Index,
		bytes.NewReader(body),
		ci.ES.Index.WithContext(ctx),
		ci.ES.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("search: index channel: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index channel: %s", res.Status())
	}
	return nil
}

// SearchChannels matches q against username and full name, username
// weighted higher.
func (ci *ChannelIndex) SearchChannels(ctx context.Context, q string, from, size int) (int64, []models.ChannelDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"username^2", "fullName"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ci.ES.Search(
		ci.ES.Search.WithContext(ctx),
		ci.ES.Search.WithIndex(ci.Index),
		ci.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.ChannelDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	docs := make([]models.ChannelDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
