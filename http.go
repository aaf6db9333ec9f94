package sessionkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Fixed endpoint paths of the backend's auth contract, relative to the
// configured base URL.
const (
	loginPath    = "/auth/login"
	completePath = "/auth/complete-login"
	refreshPath  = "/auth/refresh-token"
	logoutPath   = "/auth/logout"
)

type loginWireRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type completeWireRequest struct {
	UserID string `json:"userId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type tokensPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type wireUser struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	Department string          `json:"department"`
}

func (w *wireUser) toUser() *User {
	if w == nil {
		return nil
	}
	return &User{
		ID:         flexibleID(w.ID),
		Name:       w.Name,
		Email:      w.Email,
		Role:       w.Role,
		Department: w.Department,
	}
}

type loginWireResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	UserID  json.RawMessage `json:"userId"`
	User    *wireUser       `json:"user"`
	Tokens  *tokensPayload  `json:"tokens"`
}

type completeWireResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	User    *wireUser      `json:"user"`
	Tokens  *tokensPayload `json:"tokens"`
}

// flexibleID decodes an identifier the backend sends as either a JSON
// number or a string.
func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.Trim(string(raw), `"`)
}

func secondsToDuration(seconds int64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// postJSON posts a JSON body and decodes a JSON response. Transport
// failures come back as *NetworkError with timeouts flagged; non-2xx
// statuses decode the body anyway when possible so endpoint-level error
// fields survive, and otherwise report the status.
func postJSON(ctx context.Context, client *http.Client, url string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if resp.StatusCode >= 400 {
				return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
			}
			return fmt.Errorf("malformed response: %w", err)
		}
	}
	return nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
