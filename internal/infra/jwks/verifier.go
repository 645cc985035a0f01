// Package jwks verifies RS256 session tokens issued by the hosted identity
// provider against its published key set.
package jwks

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	keyTTL = time.Hour
	// minRefresh bounds how often an unknown kid can force a refetch.
	minRefresh = time.Minute
)

type keySet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type Options struct {
	Issuer string
	// URL overrides the key set location. It defaults to
	// {Issuer}/.well-known/jwks.json.
	URL string
	// Audience is checked only when set.
	Audience   string
	HTTPClient *http.Client
}

type Verifier struct {
	issuer     string
	url        string
	audience   string
	httpClient *http.Client

	mu      sync.RWMutex
	cache   map[string]*rsa.PublicKey
	fetched time.Time
}

// NewVerifier returns nil, nil when no issuer is configured.
func NewVerifier(opts Options) (*Verifier, error) {
	issuer := strings.TrimRight(strings.TrimSpace(opts.Issuer), "/")
	if issuer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(issuer, "https://") && !strings.HasPrefix(issuer, "http://") {
		return nil, fmt.Errorf("jwks: invalid issuer %q", opts.Issuer)
	}
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = issuer + "/.well-known/jwks.json"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Verifier{
		issuer:     issuer,
		url:        url,
		audience:   strings.TrimSpace(opts.Audience),
		httpClient: httpClient,
		cache:      make(map[string]*rsa.PublicKey),
	}, nil
}

// Verify checks the token signature and claims and returns its subject.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	header, payload, signature, signingInput, err := parseJWT(token)
	if err != nil {
		return "", err
	}
	if alg, _ := header["alg"].(string); alg != "RS256" {
		return "", fmt.Errorf("jwks: unsupported alg %q", alg)
	}
	if err := v.ensureKeys(ctx); err != nil {
		return "", err
	}
	kid, _ := header["kid"].(string)
	key, ok := v.keyFor(kid)
	if !ok {
		// Keys rotate; one refetch before giving up.
		if !v.refreshAllowed() {
			return "", errors.New("jwks: unknown kid")
		}
		if err := v.refresh(ctx); err != nil {
			return "", err
		}
		if key, ok = v.keyFor(kid); !ok {
			return "", errors.New("jwks: unknown kid")
		}
	}
	hashed := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, hashed[:], signature); err != nil {
		return "", fmt.Errorf("jwks: %w", err)
	}
	if iss, _ := payload["iss"].(string); strings.TrimRight(iss, "/") != v.issuer {
		return "", errors.New("jwks: invalid issuer")
	}
	if v.audience != "" && !audienceMatches(payload["aud"], v.audience) {
		return "", errors.New("jwks: invalid audience")
	}
	now := time.Now().Unix()
	if exp, ok := payload["exp"].(float64); ok && now > int64(exp) {
		return "", errors.New("jwks: token expired")
	}
	if nbf, ok := payload["nbf"].(float64); ok && now < int64(nbf) {
		return "", errors.New("jwks: token not yet valid")
	}
	sub, _ := payload["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return "", errors.New("jwks: token has no subject")
	}
	return sub, nil
}

func (v *Verifier) ensureKeys(ctx context.Context) error {
	v.mu.RLock()
	fresh := time.Since(v.fetched) < keyTTL && len(v.cache) > 0
	v.mu.RUnlock()
	if fresh {
		return nil
	}
	return v.refresh(ctx)
}

func (v *Verifier) refreshAllowed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return time.Since(v.fetched) >= minRefresh
}

func (v *Verifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks: fetch keys: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: fetch keys: status %d", resp.StatusCode)
	}
	var set keySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("jwks: decode keys: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey)
	for _, key := range set.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(key)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks: no keys fetched")
	}
	v.mu.Lock()
	v.cache = keys
	v.fetched = time.Now()
	v.mu.Unlock()
	return nil
}

func (v *Verifier) keyFor(kid string) (*rsa.PublicKey, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	pk, ok := v.cache[kid]
	return pk, ok
}

func audienceMatches(aud any, want string) bool {
	switch v := aud.(type) {
	case string:
		return v == want
	case []string:
		for _, a := range v {
			if a == want {
				return true
			}
		}
	case []any:
		for _, a := range v {
			if s, ok := a.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func rsaKeyFromJWK(j jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

func parseJWT(token string) (map[string]any, map[string]any, []byte, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, nil, nil, "", errors.New("jwks: invalid token")
	}
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, nil, "", err
	}
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, nil, "", err
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, "", err
	}
	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, nil, "", err
	}
	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, nil, nil, "", err
	}
	return header, payload, signature, parts[0] + "." + parts[1], nil
}
