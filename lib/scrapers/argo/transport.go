package argo

import (
	"bufio"
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"argosync/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/http2"
)

type clientMode int

const (
	// follows redirects, caches idempotent reads
	modeAPI clientMode = iota
	// redirects disabled so the login chain can read every Location
	// header, no response cache
	modeSSO
)

func newPooledTransport() http.RoundTripper {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     time.Second * 90,
		ForceAttemptHTTP2:   true,
	}
	// the portal speaks h2, multiplexing the category calls over one
	// connection also keeps its WAF from tripping on parallel dials
	err := http2.ConfigureTransport(transport)
	if err != nil {
		slog.Warn("failed to enable http2 on transport", "err", err)
	}
	return cloudflarebp.AddCloudFlareByPass(transport)
}

// cachedTransport serves repeated GETs from a private time-boxed
// cache, requests that mutate state always pass through.
type cachedTransport struct {
	next  http.RoundTripper
	cache *gocache.Cache
}

func newCachedTransport(next http.RoundTripper, ttl time.Duration) *cachedTransport {
	return &cachedTransport{
		next:  next,
		cache: gocache.New(ttl, ttl),
	}
}

func (t *cachedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}

	key := req.URL.String()
	if entry, ok := t.cache.Get(key); ok {
		return http.ReadResponse(
			bufio.NewReader(bytes.NewReader(entry.([]byte))),
			req,
		)
	}

	res, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusOK {
		dump, err := httputil.DumpResponse(res, true)
		if err == nil {
			t.cache.Set(key, dump, gocache.DefaultExpiration)
		}
	}
	return res, nil
}

func newRestyClient(jar http.CookieJar, mode clientMode) *resty.Client {
	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(4)
	client.SetRetryWaitTime(time.Millisecond * 100)
	client.SetRetryMaxWaitTime(time.Second * 10)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		// 5xx is retried for reads only, every other status code is
		// the caller's business: the login chain needs its 3xx/4xx
		// responses untouched
		return res.StatusCode() >= 500 && res.Request.Method == http.MethodGet
	})

	transport := newPooledTransport()
	if mode == modeAPI {
		transport = newCachedTransport(transport, time.Hour)
	}
	client.SetTransport(transport)

	if mode == modeSSO {
		client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}

	telemetry.InstrumentResty(client, "scrapers/argo/http")
	return client
}
