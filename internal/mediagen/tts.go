package mediagen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// TTSClient talks to an AllTalk-compatible text-to-speech server.
type TTSClient struct {
	baseURL string
	cfg     AudioConfig
	client  *http.Client
}

func NewTTSClient(cfg AudioConfig) *TTSClient {
	return &TTSClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		client:  &http.Client{Timeout: seconds(cfg.TimeoutSeconds)},
	}
}

type ttsResponse struct {
	Status         string `json:"status"`
	OutputCacheURL string `json:"output_cache_url"`
}

// Synthesize renders text and stores the resulting audio at dest.
func (c *TTSClient) Synthesize(ctx context.Context, text, dest string) error {
	form := url.Values{
		"text_input":             {text},
		"text_filtering":         {"none"},
		"character_voice_gen":    {c.cfg.Voice},
		"rvccharacter_voice_gen": {c.cfg.RVCVoice},
		"narrator_enabled":       {"false"},
		"language":               {c.cfg.Language},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts-generate",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tts request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result.OutputCacheURL == "" {
		return fmt.Errorf("tts response has no output_cache_url")
	}

	return c.download(ctx, c.baseURL+result.OutputCacheURL, dest)
}

func (c *TTSClient) download(ctx context.Context, src, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download audio, status: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return out.Close()
}
