package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	appevent "github.com/felicity/backend/internal/application/event"
	"github.com/felicity/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	discordEmbedColor    = 0x5865F2 // Discord blurple
	descriptionPreviewMax = 300
)

// DiscordAnnouncer posts publish announcements as webhook embeds. An empty
// webhook URL falls back to the globally configured one; with neither set
// the announcement is dropped silently.
type DiscordAnnouncer struct {
	cfg    config.DiscordConfig
	client *http.Client
	logger *zap.Logger
}

var _ appevent.Announcer = (*DiscordAnnouncer)(nil)

// NewDiscordAnnouncer creates an announcer with the configured per-request timeout
func NewDiscordAnnouncer(cfg config.DiscordConfig, logger *zap.Logger) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields"`
	Timestamp   string              `json:"timestamp"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Announce posts the event embed to the webhook
func (d *DiscordAnnouncer) Announce(ctx context.Context, webhookURL string, a appevent.Announcement) error {
	if webhookURL == "" {
		webhookURL = d.cfg.DefaultWebhook
	}
	if webhookURL == "" || !d.cfg.Enabled {
		return nil
	}

	body, err := json.Marshal(discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(a)}})
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook post returned status %d", resp.StatusCode)
	}

	d.logger.Debug("event announced on discord", zap.String("event", a.Name))
	return nil
}

func buildEmbed(a appevent.Announcement) discordEmbed {
	fee := "Free"
	if a.RegistrationFee.IsPositive() {
		fee = "₹" + a.RegistrationFee.StringFixed(0)
	}
	spots := "Unlimited"
	if a.RegistrationLimit > 0 {
		spots = fmt.Sprintf("%d", a.RegistrationLimit)
	}

	description := a.Description
	if len(description) > descriptionPreviewMax {
		description = description[:descriptionPreviewMax] + "..."
	}

	embed := discordEmbed{
		Title:       "New Event: " + a.Name,
		Description: description,
		Color:       discordEmbedColor,
		Fields: []discordEmbedField{
			{Name: "Event Type", Value: titleCase(a.Type), Inline: true},
			{Name: "Registration Fee", Value: fee, Inline: true},
			{Name: "Start Date", Value: a.StartDate.Format("02 Jan 2006"), Inline: true},
			{Name: "Registration Deadline", Value: a.Deadline.Format("02 Jan 2006"), Inline: true},
			{Name: "Eligibility", Value: a.Eligibility, Inline: true},
			{Name: "Spots Available", Value: spots, Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	embed.Footer.Text = "Felicity Event Management System"

	if len(a.Tags) > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Tags",
			Value: strings.Join(a.Tags, ", "),
		})
	}
	return embed
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
