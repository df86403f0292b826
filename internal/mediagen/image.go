package mediagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
)

// ImagePrompt describes a single plated dish built from the recipe name and
// its ingredients.
func ImagePrompt(name string, ingredients []string) string {
	return fmt.Sprintf("top down distant view, one %s, (plate:0.7), (icon:0.8), simple, %s",
		name, strings.Join(ingredients, ", "))
}

// txt2imgRequest is the Stable Diffusion WebUI txt2img payload.
type txt2imgRequest struct {
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt"`
	Styles         []string `json:"styles"`
	Seed           int      `json:"seed"`
	SamplerName    string   `json:"sampler_name"`
	Scheduler      string   `json:"scheduler"`
	BatchSize      int      `json:"batch_size"`
	NIter          int      `json:"n_iter"`
	Steps          int      `json:"steps"`
	CFGScale       float64  `json:"cfg_scale"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Tiling         bool     `json:"tiling"`
	DoNotSaveGrid  bool     `json:"do_not_save_grid"`
	SendImages     bool     `json:"send_images"`
	SaveImages     bool     `json:"save_images"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// ImageClient talks to a txt2img HTTP endpoint.
type ImageClient struct {
	cfg    ImageConfig
	client *http.Client
}

func NewImageClient(cfg ImageConfig) *ImageClient {
	return &ImageClient{
		cfg:    cfg,
		client: &http.Client{Timeout: seconds(cfg.TimeoutSeconds)},
	}
}

// Generate renders prompt and returns the first image, decoded from base64.
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(txt2imgRequest{
		Prompt:         prompt,
		NegativePrompt: c.cfg.NegativePrompt,
		Styles:         []string{},
		Seed:           -1,
		SamplerName:    c.cfg.Sampler,
		Scheduler:      c.cfg.Scheduler,
		BatchSize:      1,
		NIter:          1,
		Steps:          c.cfg.Steps,
		CFGScale:       c.cfg.CFGScale,
		Width:          c.cfg.Width,
		Height:         c.cfg.Height,
		Tiling:         true,
		DoNotSaveGrid:  true,
		SendImages:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txt2img request failed with status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var result txt2imgResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0] == "" {
		return nil, fmt.Errorf("no image data in response")
	}

	encoded := result.Images[0]
	// Some servers return a data URL.
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}

// EncodeJPEG re-encodes a PNG or JPEG image as an opaque JPEG at quality.
func EncodeJPEG(data []byte, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Flatten onto white so transparent pixels do not turn black.
	bounds := src.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
