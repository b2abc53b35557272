// Package weather fetches forecast briefs from a caiyun-style weather API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production weather API endpoint.
const DefaultBaseURL = "https://api.caiyunapp.com/v2.6"

// Service returns a short weather brief for a geographic area code.
type Service interface {
	// Summary never fails: provider errors degrade to a descriptive
	// placeholder string so enrichment cannot abort the pipeline.
	Summary(ctx context.Context, adcode string) string
}

// Config represents weather client configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration // per-request timeout (default: 10s)

	// OnDegraded is called whenever a lookup degrades to a placeholder.
	// Optional, used for metrics.
	OnDegraded func()
}

type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
	onDegraded func()
}

// NewClient creates a weather Service.
func NewClient(cfg *Config) Service {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout},
		// Free-tier providers throttle aggressively; stay under their cap.
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		baseURL:    baseURL,
		token:      cfg.Token,
		onDegraded: cfg.OnDegraded,
	}
}

type forecastResponse struct {
	Result struct {
		ForecastKeypoint string `json:"forecast_keypoint"`
	} `json:"result"`
}

func (c *client) degraded(text string) string {
	if c.onDegraded != nil {
		c.onDegraded()
	}
	return text
}

func (c *client) Summary(ctx context.Context, adcode string) string {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.degraded(fmt.Sprintf("天气接口异常：%v", err))
	}

	url := fmt.Sprintf("%s/%s/weather.json?adcode=%s&alert=true", c.baseURL, c.token, adcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.degraded(fmt.Sprintf("天气接口异常：%v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("weather request failed", "adcode", adcode, "error", err)
		return c.degraded(fmt.Sprintf("天气接口异常：%v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("weather request returned non-200", "adcode", adcode, "status", resp.StatusCode)
		return c.degraded(fmt.Sprintf("天气接口错误：%d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.degraded(fmt.Sprintf("天气接口异常：%v", err))
	}

	var forecast forecastResponse
	if err := json.Unmarshal(body, &forecast); err != nil {
		return c.degraded(fmt.Sprintf("天气接口异常：%v", err))
	}
	if forecast.Result.ForecastKeypoint == "" {
		return "暂无天气简报"
	}
	return forecast.Result.ForecastKeypoint
}
