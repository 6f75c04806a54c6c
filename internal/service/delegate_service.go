package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cfg "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
)

// DelegateService hands a scheduled post to an external publishing service.
// Once a job handle is stored the external service owns the post's outcome
// and the local executor must never touch it.
type DelegateService interface {
	Schedule(ctx context.Context, account *models.Account, mediaURLs []string, caption string, at time.Time) (*transfer.DelegationTicket, error)
	Cancel(ctx context.Context, jobHandle string) error
	RequiresDelegation(profile *models.BusinessProfile) bool
}

type delegateService struct {
	cfg cfg.Config
}

func NewDelegateService(cfg cfg.Config) DelegateService {
	return &delegateService{cfg: cfg}
}

// RequiresDelegation checks the profile attributes against the configured
// marker. Matching is a plain substring test on name, description, and
// branding style, case-insensitive.
func (s *delegateService) RequiresDelegation(profile *models.BusinessProfile) bool {
	if profile == nil {
		return false
	}
	marker := strings.ToLower(s.cfg.Delegate.Marker)
	if marker == "" {
		return false
	}
	for _, field := range []string{profile.Name, profile.Description, profile.BrandingStyle} {
		if strings.Contains(strings.ToLower(field), marker) {
			return true
		}
	}
	return false
}

type delegateScheduleRequest struct {
	Platform  string   `json:"platform"`
	Handle    string   `json:"handle"`
	MediaURLs []string `json:"media_urls"`
	Caption   string   `json:"caption"`
	PublishAt string   `json:"publish_at"`
}

func (s *delegateService) Schedule(ctx context.Context, account *models.Account, mediaURLs []string, caption string, at time.Time) (*transfer.DelegationTicket, error) {
	payload := delegateScheduleRequest{
		Platform:  account.Platform,
		Handle:    account.Handle,
		MediaURLs: mediaURLs,
		Caption:   caption,
		PublishAt: at.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/posts", s.cfg.Delegate.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.cfg.Delegate.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code from %s: %d (%s)", s.cfg.Delegate.ServiceName, resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("no job id returned from %s", s.cfg.Delegate.ServiceName)
	}

	return &transfer.DelegationTicket{
		JobHandle:   result.ID,
		RawResponse: string(respBody),
	}, nil
}

func (s *delegateService) Cancel(ctx context.Context, jobHandle string) error {
	url := fmt.Sprintf("%s/api/v1/posts/%s", s.cfg.Delegate.BaseURL, jobHandle)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", s.cfg.Delegate.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code from %s: %d (%s)", s.cfg.Delegate.ServiceName, resp.StatusCode, body)
	}

	return nil
}
