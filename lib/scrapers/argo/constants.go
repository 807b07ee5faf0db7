package argo

const (
	defaultClientId     = "72fd6dea-9c3d-48e3-b8c0-5b1db712f28d"
	defaultRedirectUri  = "it.argosoft.didup.famiglia.new://login-callback"
	defaultAuthorizeUrl = "https://auth.portaleargo.it/oauth2/auth"
	defaultTokenUrl     = "https://auth.portaleargo.it/oauth2/token"
	defaultSSOBaseUrl   = "https://www.portaleargo.it/auth/sso"
	defaultAPIBaseUrl   = "https://www.portaleargo.it/appfamiglia/api/rest"
)

// the portal grants this static scope set on the consent fast path,
// a build that demands interactive per-scope consent breaks the chain
// at hop 4 instead
var grantScopes = []string{"openid", "offline", "profile", "user.roles", "argo"}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
