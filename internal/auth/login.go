package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pbaille/memo/internal/metrics"
)

// ErrInvalidCredentials is returned when the upstream rejects the login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Upstream verifies credentials against the account service, which takes a
// form POST and answers {"success": bool, "message": string, "user_id": n}.
type Upstream struct {
	url    string
	client *http.Client
}

// NewUpstream creates a login client for the account service at loginURL
func NewUpstream(loginURL string) *Upstream {
	return &Upstream{url: loginURL, client: &http.Client{Timeout: 10 * time.Second}}
}

// Account is what the upstream tells about a successful login.
type Account struct {
	UserID int64
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// Login checks the credentials. A rejection wraps ErrInvalidCredentials
// with the upstream message.
func (u *Upstream) Login(ctx context.Context, username, password string) (Account, error) {
	start := time.Now()
	status := "error"
	defer func() { metrics.RecordUpstreamCall("login", status, time.Since(start)) }()

	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, strings.NewReader(form.Encode()))
	if err != nil {
		return Account{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Account{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Account{}, fmt.Errorf("login service error (status %d): %s", resp.StatusCode, string(body))
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return Account{}, fmt.Errorf("unmarshal response: %w", err)
	}

	status = "ok"
	if !lr.Success {
		msg := lr.Message
		if msg == "" {
			msg = "Invalid credentials"
		}
		return Account{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	}
	return Account{UserID: lr.UserID}, nil
}
