package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/roboclean/ops-sync/internal/config"
)

const serviceTokenTTL = 2 * time.Minute

// HTTPProvider talks to the authentication layer's admin claims API,
// authenticating each call with a short-lived HMAC-signed service token.
type HTTPProvider struct {
	baseURL  string
	tokenKey []byte
	client   *http.Client
}

// Make sure we conform to Provider interface
var _ Provider = (*HTTPProvider)(nil)

func NewHTTPProvider(cfg config.Auth) *HTTPProvider {
	return &HTTPProvider{
		baseURL:  cfg.AdminURL,
		tokenKey: []byte(cfg.ServiceTokenKey),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) GetClaims(ctx context.Context, userID string) (*Claims, error) {
	req, err := p.newRequest(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching claims for user %s", userID)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrClaimsNotFound
	default:
		return nil, errors.Errorf("claims API returned %d for user %s", resp.StatusCode, userID)
	}

	var claims Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, errors.Wrapf(err, "decoding claims for user %s", userID)
	}
	return &claims, nil
}

func (p *HTTPProvider) SetClaims(ctx context.Context, userID string, claims Claims) error {
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	req, err := p.newRequest(ctx, http.MethodPut, userID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "writing claims for user %s", userID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrClaimsNotFound
	}
	if resp.StatusCode >= 300 {
		return errors.Errorf("claims API returned %d for user %s", resp.StatusCode, userID)
	}
	return nil
}

func (p *HTTPProvider) newRequest(ctx context.Context, method, userID string, body *bytes.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s/admin/users/%s/claims", p.baseURL, userID)

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}

	token, err := p.serviceToken()
	if err != nil {
		return nil, errors.Wrap(err, "signing service token")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (p *HTTPProvider) serviceToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops-sync",
		"iat": now.Unix(),
		"exp": now.Add(serviceTokenTTL).Unix(),
	})
	return token.SignedString(p.tokenKey)
}
