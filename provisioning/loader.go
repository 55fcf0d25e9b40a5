package provisioning

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

/* Loader manages subscription provisioning from subscriptions.yaml
 * Entries are validated on load and applied through the registry
 */

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = webhook.DefaultRetryDelaySeconds
)

// Config represents the structure of subscriptions.yaml
type Config struct {
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
}

// SubscriptionConfig represents a single subscription in the YAML file
type SubscriptionConfig struct {
	Tenant            string   `yaml:"tenant"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	TargetURL         string   `yaml:"target_url"`
	Events            []string `yaml:"events"`
	MaxRetries        *int     `yaml:"max_retries"`         // Default: 3
	RetryDelaySeconds int      `yaml:"retry_delay_seconds"` // Default: 60
	Active            *bool    `yaml:"active"`              // Default: true
}

// Loader holds the loaded entries
type Loader struct {
	entries map[string]*Entry
}

// NewLoader creates a new provisioning loader
func NewLoader() *Loader {
	return &Loader{
		entries: make(map[string]*Entry),
	}
}

// Load reads and parses the provisioning file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading subscriptions file: %w", err)
	}
	return l.Parse(data)
}

// Parse loads entries from YAML bytes
func (l *Loader) Parse(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing subscriptions YAML: %w", err)
	}

	for _, sc := range config.Subscriptions {
		maxRetries := defaultMaxRetries
		if sc.MaxRetries != nil {
			maxRetries = *sc.MaxRetries
		}
		delay := sc.RetryDelaySeconds
		if delay == 0 {
			delay = defaultRetryDelaySeconds
		}
		active := true
		if sc.Active != nil {
			active = *sc.Active
		}

		entry := &Entry{
			Tenant:            sc.Tenant,
			Name:              sc.Name,
			Description:       sc.Description,
			TargetURL:         sc.TargetURL,
			Events:            sc.Events,
			MaxRetries:        maxRetries,
			RetryDelaySeconds: delay,
			Active:            active,
		}

		if err := entry.Validate(); err != nil {
			return fmt.Errorf("validating subscription: %w", err)
		}
		if _, dup := l.entries[entry.Key()]; dup {
			return fmt.Errorf("duplicate subscription %s", entry.Key())
		}

		l.entries[entry.Key()] = entry
	}

	return nil
}

// List returns all loaded entries ordered by tenant and name
func (l *Loader) List() []*Entry {
	entries := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key() < entries[j].Key()
	})
	return entries
}

// Result counts what Apply did
type Result struct {
	Created int
	Skipped int
}

/* Apply creates the missing subscriptions through the registry
 * Existing (tenant, name) pairs are skipped, so running it at every start is safe.
 * Stops at the first failure; subscriptions created before it are kept.
 */
func (l *Loader) Apply(ctx context.Context, registry webhook.SubscriptionUseCase, logger zerolog.Logger) (Result, error) {
	var result Result
	existing := map[string]map[string]bool{}

	for _, e := range l.List() {
		names, ok := existing[e.Tenant]
		if !ok {
			subs, err := registry.List(ctx, e.Tenant)
			if err != nil {
				return result, fmt.Errorf("listing subscriptions of %s: %w", e.Tenant, err)
			}
			names = make(map[string]bool, len(subs))
			for _, s := range subs {
				names[s.Name] = true
			}
			existing[e.Tenant] = names
		}

		if names[e.Name] {
			result.Skipped++
			logger.Debug().Str("tenant_id", e.Tenant).Str("name", e.Name).Msg("subscription already provisioned")
			continue
		}

		sub, err := registry.Create(ctx, e.Tenant, webhook.CreateSubscription{
			Name:              e.Name,
			Description:       e.Description,
			TargetURL:         e.TargetURL,
			SubscribedEvents:  e.Events,
			MaxRetries:        e.MaxRetries,
			RetryDelaySeconds: e.RetryDelaySeconds,
		})
		if err != nil {
			return result, fmt.Errorf("provisioning %s: %w", e.Key(), err)
		}
		if e.Active {
			if _, err := registry.Activate(ctx, e.Tenant, sub.ID); err != nil {
				return result, fmt.Errorf("activating %s: %w", e.Key(), err)
			}
		}
		names[e.Name] = true
		result.Created++

		logger.Info().
			Str("tenant_id", e.Tenant).
			Str("subscription_id", sub.ID).
			Str("name", e.Name).
			Bool("active", e.Active).
			Msg("subscription provisioned")
	}

	return result, nil
}
