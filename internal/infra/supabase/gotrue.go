package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// GoTrue — hosted identity token introspection
// ============================================================

// gotrueUser is the subset of the GoTrue user payload we need.
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Aud   string `json:"aud"`
}

// IntrospectToken asks the hosted auth service who a token belongs to.
// A non-200 means the token is not a (valid) hosted token — callers
// treat that as "this verification path does not apply", so no retry
// is attempted here. The returned subject only proves identity; role
// and status always come from the users table.
func (c *Client) IntrospectToken(ctx context.Context, token string) (subject, email string, err error) {
	ctx, span := tracer.Start(ctx, "Supabase.IntrospectToken")
	defer span.End()

	url := fmt.Sprintf("%s/auth/v1/user", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("supabase: auth introspection request failed", zap.Error(err))
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("supabase: token rejected by auth service",
			zap.Int("status", resp.StatusCode),
		)
		return "", "", fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var user gotrueUser
	if err := json.Unmarshal(body, &user); err != nil {
		return "", "", fmt.Errorf("decode auth user: %w", err)
	}
	if user.ID == "" {
		return "", "", fmt.Errorf("auth service returned empty subject")
	}

	return user.ID, user.Email, nil
}
