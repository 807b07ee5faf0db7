package notion

import (
	"context"
	"fmt"
)

type searchRequest struct {
	Query  string       `json:"query"`
	Filter searchFilter `json:"filter"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

type searchResponse struct {
	Results []Page `json:"results"`
}

// SearchPage finds a page by title. The first match wins, Notion ranks
// exact title matches first.
func (c *Client) SearchPage(ctx context.Context, title string) (*Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			Query:  title,
			Filter: searchFilter{Value: "page", Property: "object"},
		}).
		SetResult(&searchResponse{}).
		SetError(&apiError{}).
		Post("/search")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(res); err != nil {
		return nil, err
	}

	body := res.Result().(*searchResponse)
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("notion: no page found for %q", title)
	}
	return &body.Results[0], nil
}
