package notion

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDatabase returns one page of results starting at cursor, the
// empty cursor starts from the beginning.
func (c *Client) QueryDatabase(ctx context.Context, databaseId, cursor string) ([]Page, string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(queryRequest{StartCursor: cursor, PageSize: pageSize}).
		SetResult(&queryResponse{}).
		SetError(&apiError{}).
		Post(fmt.Sprintf("/databases/%s/query", databaseId))
	if err != nil {
		return nil, "", err
	}
	if err := checkResponse(res); err != nil {
		return nil, "", err
	}

	body := res.Result().(*queryResponse)
	if !body.HasMore {
		return body.Results, "", nil
	}
	return body.Results, body.NextCursor, nil
}

// PropertyValues walks the whole database and collects the plain text
// of one property across every page. The sync reads this before it
// writes anything, pages already present are never recreated.
func (c *Client) PropertyValues(ctx context.Context, databaseId, property string) (map[string]struct{}, error) {
	ctx, span := tracer.Start(ctx, "client:PropertyValues")
	defer span.End()

	values := map[string]struct{}{}
	cursor := ""
	for {
		pages, next, err := c.QueryDatabase(ctx, databaseId, cursor)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "database query failed")
			return nil, err
		}
		for _, page := range pages {
			value := page.Properties[property].PlainText()
			if value != "" {
				values[value] = struct{}{}
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	span.SetAttributes(attribute.Int("values", len(values)))
	return values, nil
}
