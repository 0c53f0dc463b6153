package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"engjobs/internal/domain/entity"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier sends posting notifications to Discord via webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified
// configuration. The rate limiter is set to 0.5 requests/second with burst
// of 3 (Discord webhook limit: 30 requests per minute).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3), // 0.5 req/s (30 req/min), burst of 3
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title     string              `json:"title"`
	URL       string              `json:"url,omitempty"`
	Color     int                 `json:"color"`
	Fields    []DiscordEmbedField `json:"fields"`
	Footer    DiscordEmbedFooter  `json:"footer"`
	Timestamp string              `json:"timestamp"`
}

// DiscordEmbedField represents a labeled field inside an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordErrorResponse represents the error response from Discord API.
type DiscordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // In seconds
}

const (
	// Discord limits
	maxTitleLength   = 256
	truncationSuffix = "..."

	// Embed colors per role type
	newGradColor    = 0x00ff7f // spring green
	internshipColor = 0x1e90ff // dodger blue
)

// roleColor maps a role type to its embed color.
func roleColor(role entity.RoleType) int {
	if role == entity.RoleTypeNewGrad {
		return newGradColor
	}
	return internshipColor
}

// buildEmbedPayload creates a Discord webhook payload from a posting.
//
// The embed carries the posting title (linked to the application URL when
// one exists), company, location and posting date as fields, the source key
// in the footer, and a color keyed to the role type.
func (d *DiscordNotifier) buildEmbedPayload(posting *entity.Posting) DiscordWebhookPayload {
	title := posting.Title
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	location := posting.Location
	if location == "" {
		location = "not specified"
	}

	fields := []DiscordEmbedField{
		{Name: "Company", Value: posting.Company, Inline: true},
		{Name: "Role", Value: string(posting.RoleType), Inline: true},
		{Name: "Location", Value: location, Inline: true},
		{Name: "Posted", Value: posting.DatePosted.Format("Jan 2, 2006"), Inline: true},
	}
	if posting.URL != "" {
		fields = append(fields, DiscordEmbedField{
			Name:  "Apply",
			Value: fmt.Sprintf("[link](%s)", posting.URL),
		})
	}

	embed := DiscordEmbed{
		Title:  title,
		URL:    posting.URL,
		Color:  roleColor(posting.RoleType),
		Fields: fields,
		Footer: DiscordEmbedFooter{
			Text: posting.Source,
		},
		Timestamp: posting.DatePosted.Format(time.RFC3339),
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{embed},
	}
}

// sendWebhookRequest sends a Discord webhook request for the given posting.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, posting *entity.Posting) error {
	payload := d.buildEmbedPayload(posting)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body for error messages
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractRetryAfter(resp, body)
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter extracts retry_after duration from Discord error response.
// It tries to parse from JSON body first, then falls back to Retry-After header.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr DiscordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}

	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	// Default retry after 5 seconds
	return 5 * time.Second
}

// sendWebhookRequestWithRetry sends a Discord webhook request with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429 errors: Sleep for retry_after from the Discord response
//   - Server errors (5xx): Exponential backoff (5s, 10s)
//   - Client errors (4xx): No retry, fail immediately
func (d *DiscordNotifier) sendWebhookRequestWithRetry(ctx context.Context, posting *entity.Posting) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.sendWebhookRequest(ctx, posting)

		if err == nil {
			slog.Info("Discord notification successful",
				slog.String("request_id", requestID),
				slog.Int64("posting_id", posting.ID),
				slog.String("url", posting.URL),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Discord rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.Int64("posting_id", posting.ID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("Discord notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.Int64("posting_id", posting.ID),
				slog.String("url", posting.URL),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Discord API request failed, retrying",
				slog.String("request_id", requestID),
				slog.Int64("posting_id", posting.ID),
				slog.String("url", posting.URL),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("Discord notification failed after all retries",
		slog.String("request_id", requestID),
		slog.Int64("posting_id", posting.ID),
		slog.String("url", posting.URL),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyPosting sends a Discord notification for a newly stored posting.
// This method implements the Notifier interface.
//
// It generates a request_id for tracing, applies rate limiting, and sends
// the webhook request with retry logic.
func (d *DiscordNotifier) NotifyPosting(ctx context.Context, posting *entity.Posting) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.Int64("posting_id", posting.ID),
		slog.String("source", posting.Source),
		slog.String("url", posting.URL))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.Int64("posting_id", posting.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return d.sendWebhookRequestWithRetry(ctx, posting)
}
