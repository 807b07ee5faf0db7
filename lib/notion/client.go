// Package notion is a minimal client for the pieces of the Notion API
// this project touches: querying a database's pages and creating new
// ones.
package notion

import (
	"fmt"
	"net/http"
	"time"

	"argosync/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("notion")

const (
	defaultBaseUrl = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
	// the API's maximum, fewer round trips while paginating
	pageSize = 100
)

type Options struct {
	// integration secret
	Token string
	// override for tests
	BaseUrl string
}

type Client struct {
	http *resty.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetAuthToken(opts.Token)
	client.SetHeader("Notion-Version", apiVersion)
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(4)
	client.SetRetryWaitTime(time.Millisecond * 500)
	client.SetRetryMaxWaitTime(time.Second * 15)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		// 429 is the only status worth retrying, page creation is not
		// idempotent so a 5xx must surface to the caller instead
		return res.StatusCode() == http.StatusTooManyRequests
	})

	telemetry.InstrumentResty(client, "notion/http")
	return &Client{http: client}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("notion: %s (%s)", e.Message, e.Code)
}

func checkResponse(res *resty.Response) error {
	if res.StatusCode() < 400 {
		return nil
	}
	apiErr, ok := res.Error().(*apiError)
	if ok && apiErr.Message != "" {
		return apiErr
	}
	return fmt.Errorf("notion: unexpected status %d", res.StatusCode())
}
