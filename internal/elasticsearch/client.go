package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	es "github.com/elastic/go-elasticsearch/v9"

	"github.com/Novip1906/tasks-http/internal/models"
)

const mapping = `
{
  "mappings": {
    "properties": {
      "id": { "type": "long" },
      "userId": { "type": "long" },
      "title": { "type": "text" },
      "description": { "type": "text" },
      "completed": { "type": "boolean" },
      "createdAt": { "type": "date" },
      "updatedAt": { "type": "date" }
    }
  }
}`

// maxSearchResults is the default index.max_result_window.
const maxSearchResults = 10000

type Client struct {
	es    *es.Client
	index string
	log   *slog.Logger
}

func NewClient(addresses []string, index string, log *slog.Logger) (*Client, error) {
	cfg := es.Config{
		Addresses: addresses,
	}
	c, err := es.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	client := &Client{
		es:    c,
		index: index,
		log:   log,
	}

	if err := client.ensureIndex(); err != nil {
		return nil, err
	}

	return client, nil
}

// Search returns the user's tasks whose title or description match query.
func (c *Client) Search(ctx context.Context, userId int64, query string) ([]*models.Task, error) {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"title", "description"},
					}},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"userId": userId}},
				},
			},
		},
		"size": maxSearchResults,
		"sort": []any{
			map[string]any{"id": map[string]any{"order": "asc"}},
		},
	})
	if err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es search error: %s", res.String())
	}

	var raw struct {
		Hits struct {
			Hits []struct {
				Source models.Task `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(raw.Hits.Hits))
	for _, h := range raw.Hits.Hits {
		task := h.Source
		tasks = append(tasks, &task)
	}

	return tasks, nil
}

func (c *Client) IndexTask(ctx context.Context, task *models.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(strconv.FormatInt(task.Id, 10)),
		c.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("es index error: %s", res.String())
	}

	return nil
}

func (c *Client) DeleteTask(ctx context.Context, taskId int64) error {
	res, err := c.es.Delete(
		c.index,
		strconv.FormatInt(taskId, 10),
		c.es.Delete.WithContext(ctx),
		c.es.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// already gone
	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("es delete error: %s", res.String())
	}
	return nil
}

func (c *Client) ensureIndex() error {
	res, err := c.es.Indices.Exists([]string{c.index})
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		c.log.Info("elasticsearch index exists", "index", c.index)
		return nil
	}

	if res.StatusCode != 404 {
		return fmt.Errorf("unexpected status checking index: %s", res.String())
	}

	c.log.Info("creating elasticsearch index", "index", c.index)

	createRes, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create index error: %s", createRes.String())
	}

	c.log.Info("elasticsearch index created", "index", c.index)
	return nil
}
