package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/reslab-bio/omics-console/internal/models"
)

// SearchOrganisms queries the taxonomy catalog for one kingdom. The context
// is expected to be cancelable: the wizard aborts superseded searches through
// it. Results are capped at the configured maximum regardless of what the
// backend reports, and the response may be either a plain array or a
// paginated envelope.
func (c *Client) SearchOrganisms(ctx context.Context, query string, kingdom models.Kingdom) ([]models.Organism, error) {
	cacheKey := fmt.Sprintf("organisms:%s:%s", kingdom, query)
	if cached, ok := c.catalog.Get(cacheKey); ok {
		return cached.([]models.Organism), nil
	}

	path := fmt.Sprintf("/organisms/?search=%s&kingdom=%s",
		url.QueryEscape(query), url.QueryEscape(string(kingdom)))

	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	organisms, err := decodeList[models.Organism](raw)
	if err != nil {
		return nil, err
	}
	if len(organisms) > c.maxSearchResults {
		organisms = organisms[:c.maxSearchResults]
	}

	c.catalog.SetDefault(cacheKey, organisms)
	return organisms, nil
}

// ListOrganisms fetches the whole organism vocabulary (used by the dashboard
// sample-edit form).
func (c *Client) ListOrganisms(ctx context.Context) ([]models.Organism, error) {
	if cached, ok := c.catalog.Get("organisms:all"); ok {
		return cached.([]models.Organism), nil
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/organisms/", &raw); err != nil {
		return nil, err
	}
	organisms, err := decodeList[models.Organism](raw)
	if err != nil {
		return nil, err
	}

	c.catalog.SetDefault("organisms:all", organisms)
	return organisms, nil
}

// ListTissues fetches the tissue vocabulary, optionally filtered by kingdom.
func (c *Client) ListTissues(ctx context.Context, kingdom models.Kingdom) ([]models.TissueType, error) {
	cacheKey := fmt.Sprintf("tissues:%s", kingdom)
	if cached, ok := c.catalog.Get(cacheKey); ok {
		return cached.([]models.TissueType), nil
	}

	path := "/tissues/"
	if kingdom != "" {
		path = fmt.Sprintf("/tissues/?kingdom=%s", url.QueryEscape(string(kingdom)))
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	tissues, err := decodeList[models.TissueType](raw)
	if err != nil {
		return nil, err
	}

	c.catalog.SetDefault(cacheKey, tissues)
	return tissues, nil
}
