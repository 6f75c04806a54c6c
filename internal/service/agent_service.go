package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	cfg "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

// LocalPublisher executes a post in-process by driving the browser
// automation agent. It is one of the two execution strategies; the other
// hands the post to an external scheduler (DelegateService).
type LocalPublisher interface {
	PublishSingle(ctx context.Context, account *models.Account, mediaURL, caption string) (*transfer.PublishResult, error)
	PublishMulti(ctx context.Context, account *models.Account, mediaURLs []string, caption string) (*transfer.PublishResult, error)
}

type agentPublisher struct {
	cfg cfg.Config
}

func NewAgentPublisher(cfg cfg.Config) LocalPublisher {
	return &agentPublisher{cfg: cfg}
}

type agentRequest struct {
	Platform  string   `json:"platform"`
	Handle    string   `json:"handle"`
	Token     string   `json:"token"`
	MediaURLs []string `json:"media_urls"`
	Caption   string   `json:"caption"`
}

func (a *agentPublisher) PublishSingle(ctx context.Context, account *models.Account, mediaURL, caption string) (*transfer.PublishResult, error) {
	return a.publish(ctx, account, []string{mediaURL}, caption)
}

func (a *agentPublisher) PublishMulti(ctx context.Context, account *models.Account, mediaURLs []string, caption string) (*transfer.PublishResult, error) {
	return a.publish(ctx, account, mediaURLs, caption)
}

func (a *agentPublisher) publish(ctx context.Context, account *models.Account, mediaURLs []string, caption string) (*transfer.PublishResult, error) {
	decryptedToken, err := utils.Decrypt(account.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt account credentials: %w", err)
	}

	payload := agentRequest{
		Platform:  account.Platform,
		Handle:    account.Handle,
		Token:     decryptedToken,
		MediaURLs: mediaURLs,
		Caption:   caption,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	url := fmt.Sprintf("%s/publish", a.cfg.AgentURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from agent: %d (%s)", resp.StatusCode, respBody)
	}

	var result transfer.PublishResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing agent response: %w", err)
	}

	return &result, nil
}
