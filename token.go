package firewire

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// defaultAudience is the audience claim accepted by
// the Firestore endpoint for self-signed service
// account tokens.
const defaultAudience = "https://firestore.googleapis.com/"

// tokenLifetime is the validity window of a minted
// token. Tokens are refreshed with a safety margin
// before expiry.
const tokenLifetime = time.Hour
const tokenExpiryMargin = 10 * time.Minute

// Credentials hold a service account identity, in the
// shape of a Google service account key file.
type Credentials struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// CredentialsFromJSON parses a service account key
// file, e.g. the contents of the JSON key downloaded
// from the cloud console.
func CredentialsFromJSON(data []byte) (*Credentials, error) {
	var creds Credentials

	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, errors.New("firewire: malformed service account key: " + err.Error())
	}

	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, errors.New("firewire: service account key is missing client_email or private_key")
	}

	return &creds, nil
}

// jwtTokenSource mints self-signed RS256 bearer
// tokens for a service account. It complies with the
// oauth2.TokenSource interface and is wrapped in a
// ReuseTokenSource, so a token is minted once per
// lifetime window rather than once per request.
type jwtTokenSource struct {
	email    string
	audience string
	key      *rsa.PrivateKey
}

// newTokenSource builds a caching token source from
// service account credentials.
func newTokenSource(creds *Credentials, audience string) (oauth2.TokenSource, error) {
	if creds == nil {
		return nil, errors.New("firewire: nil Credentials")
	}

	key, err := gojwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return nil, errors.New("firewire: malformed service account private key: " + err.Error())
	}

	if audience == "" {
		audience = defaultAudience
	}

	ts := &jwtTokenSource{
		email:    creds.ClientEmail,
		audience: audience,
		key:      key,
	}

	return oauth2.ReuseTokenSource(nil, ts), nil
}

// Token mints a fresh self-signed bearer token.
func (ts *jwtTokenSource) Token() (*oauth2.Token, error) {
	now := time.Now()
	expiry := now.Add(tokenLifetime)

	claims := gojwt.MapClaims{
		"iss": ts.email,
		"sub": ts.email,
		"aud": ts.audience,
		"iat": now.Unix(),
		"exp": expiry.Unix(),
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(ts.key)
	if err != nil {
		return nil, errors.New("firewire: signing token: " + err.Error())
	}

	return &oauth2.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		Expiry:      expiry.Add(-tokenExpiryMargin),
	}, nil
}
