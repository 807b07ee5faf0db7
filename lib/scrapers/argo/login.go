package argo

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func queryParam(rawUrl, key string) string {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func protocolErr(span trace.Span, hop int, reason string) error {
	err := &ProtocolError{Hop: hop, Reason: reason}
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

// getCode walks the portal's fixed consent-redirect chain and returns
// the authorization code. Every hop carries its payload in the
// Location header only, so each step is request, assert redirect,
// extract one token; a missing token anywhere kills the attempt and
// no further hop is requested.
func (c *Client) getCode(ctx context.Context, link LoginLink) (string, error) {
	ctx, span := tracer.Start(ctx, "client:getCode")
	defer span.End()

	// hop 1: the authorization endpoint bounces to the login page
	res, err := c.sso.R().
		SetContext(ctx).
		Get(link.Url)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	loginUrl := res.Header().Get("Location")
	if loginUrl == "" {
		return "", protocolErr(span, 1, "Invalid login url")
	}
	loginChallenge := queryParam(loginUrl, "login_challenge")
	if loginChallenge == "" {
		return "", protocolErr(span, 1, "Invalid login challenge")
	}

	// hop 2: credentials, form encoded, against the fixed login endpoint
	res, err = c.sso.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"challenge":              loginChallenge,
			"client_id":              c.opts.ClientId,
			"famiglia_customer_code": c.opts.SchoolCode,
			"login":                  "true",
			"username":               c.opts.Username,
			"password":               c.opts.Password,
		}).
		Post(c.opts.SSOBaseUrl + "/login")
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	authUrl := res.Header().Get("Location")
	if authUrl == "" {
		return "", protocolErr(span, 2, "Invalid login redirect")
	}
	if queryParam(authUrl, "code_challenge") == "" {
		return "", protocolErr(span, 2, "Invalid code challenge")
	}

	// hop 3: follow the auth redirect to reach the consent page
	res, err = c.sso.R().
		SetContext(ctx).
		Get(authUrl)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	consentUrl := res.Header().Get("Location")
	if consentUrl == "" {
		return "", protocolErr(span, 3, "Invalid consent redirect")
	}
	consentChallenge := queryParam(consentUrl, "consent_challenge")
	if consentChallenge == "" {
		return "", protocolErr(span, 3, "Invalid consent challenge")
	}

	// hop 4: consent fast path, the portal grants the static scope set
	form := url.Values{}
	form.Set("challenge", consentChallenge)
	for _, scope := range grantScopes {
		form.Add("grant_scope", scope)
	}
	form.Set("consent", "Accetta")

	res, err = c.sso.R().
		SetContext(ctx).
		SetHeader("content-type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(c.opts.SSOBaseUrl + "/consent")
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	verifierUrl := res.Header().Get("Location")
	if verifierUrl == "" {
		return "", protocolErr(span, 4, "Invalid auth redirect after consent")
	}
	if queryParam(verifierUrl, "consent_verifier") == "" {
		return "", protocolErr(span, 4, "Invalid consent verifier")
	}

	// hop 5: the verifier redirect lands on the app callback
	res, err = c.sso.R().
		SetContext(ctx).
		Get(verifierUrl)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	finalRedirect := res.Header().Get("Location")
	if finalRedirect == "" {
		return "", protocolErr(span, 5, "Invalid final redirect")
	}

	// hop 6: the authorization code rides the callback's query string
	code := queryParam(finalRedirect, "code")
	if code == "" {
		return "", protocolErr(span, 6, "Invalid login code")
	}

	span.SetAttributes(attribute.KeyValue{
		Key:   "state",
		Value: attribute.StringValue(queryParam(finalRedirect, "state")),
	})
	return code, nil
}
