package argo

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"

	random "github.com/mazen160/go-random"
)

// LoginLink is the authorization url derived before any network call,
// one per login attempt. The verifier is needed again at the token
// exchange, the state binds the final redirect to this attempt.
type LoginLink struct {
	Url          string
	State        string
	CodeVerifier string
	Challenge    string
}

func generateCodeVerifier() (string, error) {
	nonce := make([]byte, 32)
	_, err := rand.Read(nonce)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(nonce), nil
}

func GenerateLoginLink(opts Options) (LoginLink, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return LoginLink{}, err
	}
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	state, err := random.String(22)
	if err != nil {
		return LoginLink{}, err
	}

	endpoint, err := url.Parse(opts.AuthorizeUrl)
	if err != nil {
		return LoginLink{}, err
	}

	values := endpoint.Query()
	values.Add("redirect_uri", defaultRedirectUri)
	values.Add("client_id", opts.ClientId)
	values.Add("response_type", "code")
	values.Add("prompt", "login")
	values.Add("state", state)
	values.Add("scope", strings.Join(grantScopes, " "))
	values.Add("code_challenge", challenge)
	values.Add("code_challenge_method", "S256")
	endpoint.RawQuery = values.Encode()

	return LoginLink{
		Url:          endpoint.String(),
		State:        state,
		CodeVerifier: verifier,
		Challenge:    challenge,
	}, nil
}
