package provisioning

import (
	"fmt"
	"net/url"

	"github.com/marcelsud/clinic-webhooks/webhook"
)

/* Entry is one subscription declared in the provisioning file
 * Keyed by (tenant, name): an existing subscription with the same key is never touched
 */
type Entry struct {
	Tenant            string
	Name              string
	Description       string
	TargetURL         string
	Events            []string
	MaxRetries        int
	RetryDelaySeconds int
	Active            bool
}

// Key identifies the entry within the file and the store
func (e *Entry) Key() string {
	return e.Tenant + "/" + e.Name
}

// Validate checks the entry without touching the store
func (e *Entry) Validate() error {
	if e.Tenant == "" {
		return fmt.Errorf("tenant cannot be empty for subscription %q", e.Name)
	}
	if e.Name == "" {
		return fmt.Errorf("name cannot be empty for tenant %s", e.Tenant)
	}
	u, err := url.Parse(e.TargetURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("target_url must be an absolute http(s) URL for subscription %s", e.Key())
	}
	if len(e.Events) == 0 {
		return fmt.Errorf("events cannot be empty for subscription %s", e.Key())
	}
	// every tag must be in the catalog, unknown ones are not dropped here
	for _, tag := range e.Events {
		if _, ok := webhook.ParseEvent(tag); !ok {
			return fmt.Errorf("unknown event '%s' for subscription %s", tag, e.Key())
		}
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative for subscription %s", e.Key())
	}
	if e.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds cannot be negative for subscription %s", e.Key())
	}
	return nil
}
