// Package gemini calls the Google Generative Language API to turn a
// blob of school data into a short natural language summary.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"argosync/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("gemini")

const (
	defaultBaseUrl = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

type Options struct {
	ApiKey string
	// defaults to gemini-1.5-flash
	Model string
	// override for tests
	BaseUrl string
}

type Client struct {
	http   *resty.Client
	model  string
	apiKey string
}

func NewClient(opts Options) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	// generation is slow, well past the usual request budget
	client.SetTimeout(time.Minute * 2)

	telemetry.InstrumentResty(client, "gemini/http")
	return &Client{http: client, model: opts.Model, apiKey: opts.ApiKey}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateContent sends one prompt and returns the first candidate's
// text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:GenerateContent")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(generateRequest{
			Contents: []content{{Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&generateResponse{}).
		SetError(&apiError{}).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation request failed")
		return "", err
	}

	if res.StatusCode() >= 400 {
		reason := fmt.Sprintf("gemini: unexpected status %d", res.StatusCode())
		if apiErr, ok := res.Error().(*apiError); ok && apiErr.Error.Message != "" {
			reason = fmt.Sprintf("gemini: %s", apiErr.Error.Message)
		}
		span.SetStatus(codes.Error, reason)
		return "", fmt.Errorf("%s", reason)
	}

	body := res.Result().(*generateResponse)
	if len(body.Candidates) == 0 {
		return "", fmt.Errorf("gemini: response carried no candidates")
	}

	var b strings.Builder
	for _, p := range body.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: candidate carried no text")
	}
	return text, nil
}
