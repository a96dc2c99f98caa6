package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/models"
)

type MenuDoc struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

var menuMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "keyword"},
			"owner_id":     map[string]any{"type": "keyword"},
			"title":        map[string]any{"type": "text"},
			"company_name": map[string]any{"type": "text"},
			"created_at":   map[string]any{"type": "date"},
		},
	},
}

// MenuIndex keeps owner menus searchable by title and company name.
type MenuIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewMenuIndex(client *elasticsearch.Client, index string) *MenuIndex {
	return &MenuIndex{Client: client, Index: index}
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (m *MenuIndex) EnsureIndex(ctx context.Context) error {
	res, err := m.Client.Indices.Exists([]string{m.Index}, m.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(menuMapping)
	if err != nil {
		return err
	}
	res, err = m.Client.Indices.Create(m.Index,
		m.Client.Indices.Create.WithContext(ctx),
		m.Client.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (m *MenuIndex) IndexMenu(ctx context.Context, menu models.Menu) error {
	doc := MenuDoc{
		ID:        menu.ID.String(),
		Title:     menu.Title,
		CreatedAt: menu.CreatedAt,
	}
	if menu.OwnerID != nil {
		doc.OwnerID = *menu.OwnerID
	}
	if menu.CompanyName != nil {
		doc.CompanyName = *menu.CompanyName
	}

	body, err := encode(doc)
	if err != nil {
		return err
	}
	res, err := m.Client.Index(m.Index, body,
		m.Client.Index.WithContext(ctx),
		m.Client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (m *MenuIndex) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	res, err := m.Client.Delete(m.Index, id.String(), m.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// SearchMenus returns the total hit count and the matching menu ids in relevance order.
func (m *MenuIndex) SearchMenus(ctx context.Context, ownerID, query string, from, size int) (int64, []uuid.UUID, error) {
	body, err := encode(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
				},
				"must": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":     query,
							"fields":    []string{"title^2", "company_name"},
							"fuzziness": "AUTO",
						},
					},
				},
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := m.Client.Search(
		m.Client.Search.WithContext(ctx),
		m.Client.Search.WithIndex(m.Index),
		m.Client.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source MenuDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}
