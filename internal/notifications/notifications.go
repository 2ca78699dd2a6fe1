package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/energy-accounting/internal/env"
	"github.com/thatsimonsguy/energy-accounting/internal/model"
)

var client *resty.Client
var topic string
var initialized bool

// Init initializes the notification client
func Init() {
	if env.Cfg.NtfyTopic == "" {
		log.Warn().Msg("Ntfy topic not configured - notifications disabled")
		initialized = false
		return
	}

	client = resty.New().
		SetTimeout(10 * time.Second).
		SetBaseURL(strings.TrimSuffix(env.Cfg.NtfyServer, "/"))
	topic = env.Cfg.NtfyTopic
	initialized = true

	log.Info().
		Str("topic", topic).
		Msg("Ntfy notifications initialized")
}

// Send sends a notification to the ntfy server
func Send(title, message string) error {
	if !initialized {
		return fmt.Errorf("notifications not initialized")
	}

	resp, err := client.R().
		SetBody(map[string]interface{}{
			"topic":   topic,
			"title":   title,
			"message": message,
		}).
		Post("/")
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ntfy returned non-success status: %d", resp.StatusCode())
	}

	log.Debug().
		Str("title", title).
		Int("status", resp.StatusCode()).
		Msg("Notification sent successfully")

	return nil
}

// DatasetLoaded reports unavailable sources of a freshly loaded dataset. A missing inventory
// blocks every calculation; a missing occupancy log only disables the occupancy figures.
func DatasetLoaded(ds model.Dataset) {
	if !initialized {
		return
	}
	if ds.InventoryErr != nil {
		if err := Send("Inventory unavailable", "No energy figures can be computed: "+ds.InventoryErr.Error()); err != nil {
			log.Warn().Err(err).Msg("Failed to send inventory notice")
		}
	}
	if ds.OccupancyErr != nil {
		if err := Send("Occupancy log unavailable", "Peak occupancy is unknown: "+ds.OccupancyErr.Error()); err != nil {
			log.Warn().Err(err).Msg("Failed to send occupancy notice")
		}
	}
}
