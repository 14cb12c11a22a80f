// Client for web3.storage compatible pinning APIs. Uploads go to the API host,
// downloads are served by an IPFS HTTP gateway.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"

	"ai-marketplace-backend/pkg/models"
)

type Client interface {
	Put(ctx context.Context, fileName string, data []byte) (string, error)
	Get(ctx context.Context, contentID string) ([]byte, error)
}

type client struct {
	apiBase     string
	gatewayBase string
	token       string
	client      http.Client
}

type Credentials struct {
	Token string
}

var (
	ErrNotFound  = errors.New("not found")
	ErrEmptyFile = errors.New("empty file")
)

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (c *client) Put(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	var res struct {
		CID string `json:"cid"`
	}

	headers := map[string]string{
		"Content-Type": "application/octet-stream",
		"X-Name":       fileName,
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.apiBase+"/upload", bytes.NewReader(data), headers)
	if err != nil {
		return "", fmt.Errorf("%w: failed to do request: %w", models.ErrStorageUnavailable, err)
	}

	if err = json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", models.ErrStorageUnavailable, err)
	}

	if res.CID == "" {
		return "", fmt.Errorf("%w: empty cid in response", models.ErrStorageUnavailable)
	}

	if _, err = cid.Decode(res.CID); err != nil {
		return "", fmt.Errorf("%w: invalid cid %q in response: %w", models.ErrStorageUnavailable, res.CID, err)
	}

	return res.CID, nil
}

func (c *client) Get(ctx context.Context, contentID string) ([]byte, error) {
	parsed, err := cid.Decode(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid cid: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodGet, c.gatewayBase+"/ipfs/"+parsed.String(), nil, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: failed to do request: %w", models.ErrStorageUnavailable, err)
	}

	return body, nil
}

func (c *client) doRequest(ctx context.Context, method, url string, body io.Reader, headers map[string]string) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}

	res, err := c.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if res.StatusCode != http.StatusOK {
		var e apiError
		if err = json.NewDecoder(res.Body).Decode(&e); err != nil || e.Message == "" {
			return nil, fmt.Errorf("status code is %d", res.StatusCode)
		}
		return nil, fmt.Errorf("status code is %d, error: %s", res.StatusCode, e.Message)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}

func NewClient(apiBase, gatewayBase string, timeout time.Duration, credentials *Credentials) Client {
	c := &client{
		apiBase:     apiBase,
		gatewayBase: gatewayBase,
		client: http.Client{
			Timeout: timeout,
		},
	}
	if credentials != nil {
		c.token = credentials.Token
	}

	return c
}
