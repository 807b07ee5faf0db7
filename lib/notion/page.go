package notion

import (
	"context"
)

type CreatePageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
	Children   []Block             `json:"children,omitempty"`
}

func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&Page{}).
		SetError(&apiError{}).
		Post("/pages")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return res.Result().(*Page), nil
}
