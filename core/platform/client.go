package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("platform resource not found")

// TokenSource provides the Admin API token of a shop.
type TokenSource interface {
	AccessToken(ctx context.Context, shop string) (string, error)
}

// LineItem is an order line item resolved to its inventory identifiers.
type LineItem struct {
	ID              string
	SKU             string
	VariantID       string
	InventoryItemID string
}

// Client calls the Admin GraphQL API on behalf of installed shops.
type Client struct {
	cfg    Config
	tokens TokenSource
	http   *http.Client
}

// NewClient creates a client. Tokens are looked up per call.
func NewClient(cfg Config, tokens TokenSource) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-07"
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do posts one GraphQL query and decodes data into out.
func (c *Client) do(ctx context.Context, shop, query string, vars map[string]any, out any) error {
	token, err := c.tokens.AccessToken(ctx, shop)
	if err != nil {
		return fmt.Errorf("access token for %s: %w", shop, err)
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("platform graphql error: %s", strings.Join(msgs, "; "))
	}
	return json.Unmarshal(parsed.Data, out)
}

func (c *Client) endpoint(shop string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if base == "" {
		base = "https://" + shop
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, c.cfg.APIVersion)
}

const locationQuery = `query($id: ID!) { location(id: $id) { name } }`

// LocationName returns the display name of a location.
func (c *Client) LocationName(ctx context.Context, shop, locationID string) (string, error) {
	var data struct {
		Location *struct {
			Name string `json:"name"`
		} `json:"location"`
	}
	if err := c.do(ctx, shop, locationQuery, map[string]any{"id": locationID}, &data); err != nil {
		return "", err
	}
	if data.Location == nil {
		return "", fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	return data.Location.Name, nil
}

const orderLineItemsQuery = `query($id: ID!) {
  order(id: $id) {
    lineItems(first: 250) {
      nodes { id sku variant { id inventoryItem { id } } }
    }
  }
}`

// OrderLineItems returns the line items of an order keyed by their numeric id.
func (c *Client) OrderLineItems(ctx context.Context, shop, orderID string) (map[string]LineItem, error) {
	var data struct {
		Order *struct {
			LineItems struct {
				Nodes []struct {
					ID      string  `json:"id"`
					SKU     *string `json:"sku"`
					Variant *struct {
						ID            string `json:"id"`
						InventoryItem *struct {
							ID string `json:"id"`
						} `json:"inventoryItem"`
					} `json:"variant"`
				} `json:"nodes"`
			} `json:"lineItems"`
		} `json:"order"`
	}
	if err := c.do(ctx, shop, orderLineItemsQuery, map[string]any{"id": orderID}, &data); err != nil {
		return nil, err
	}
	if data.Order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	items := make(map[string]LineItem, len(data.Order.LineItems.Nodes))
	for _, node := range data.Order.LineItems.Nodes {
		item := LineItem{ID: node.ID}
		if node.SKU != nil {
			item.SKU = *node.SKU
		}
		if node.Variant != nil {
			item.VariantID = node.Variant.ID
			if node.Variant.InventoryItem != nil {
				item.InventoryItemID = node.Variant.InventoryItem.ID
			}
		}
		items[lastSegment(node.ID)] = item
	}
	return items, nil
}

const availableQuery = `query($item: ID!, $location: ID!) {
  inventoryItem(id: $item) {
    inventoryLevel(locationId: $location) {
      quantities(names: ["available"]) { name quantity }
    }
  }
}`

// AvailableQuantity returns the current available quantity of an item at a location.
func (c *Client) AvailableQuantity(ctx context.Context, shop, inventoryItemID, locationID string) (int, error) {
	var data struct {
		InventoryItem *struct {
			InventoryLevel *struct {
				Quantities []struct {
					Name     string `json:"name"`
					Quantity int    `json:"quantity"`
				} `json:"quantities"`
			} `json:"inventoryLevel"`
		} `json:"inventoryItem"`
	}
	vars := map[string]any{"item": inventoryItemID, "location": locationID}
	if err := c.do(ctx, shop, availableQuery, vars, &data); err != nil {
		return 0, err
	}
	if data.InventoryItem == nil || data.InventoryItem.InventoryLevel == nil {
		return 0, fmt.Errorf("%w: inventory level %s at %s", ErrNotFound, inventoryItemID, locationID)
	}
	for _, q := range data.InventoryItem.InventoryLevel.Quantities {
		if q.Name == "available" {
			return q.Quantity, nil
		}
	}
	return 0, fmt.Errorf("%w: available quantity of %s at %s", ErrNotFound, inventoryItemID, locationID)
}

func lastSegment(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}
