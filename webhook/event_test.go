package webhook_test

import (
	"testing"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/stretchr/testify/assert"
)

func TestEvent(t *testing.T) {
	t.Run("catalog round trips through tags", func(t *testing.T) {
		events := webhook.Events()
		assert.Len(t, events, 9)
		for _, e := range events {
			parsed, ok := webhook.ParseEvent(e.String())
			assert.True(t, ok, e.String())
			assert.Equal(t, e, parsed)
		}
	})

	t.Run("unknown tags are not errors", func(t *testing.T) {
		e, ok := webhook.ParseEvent("invoice.paid")
		assert.False(t, ok)
		assert.Equal(t, webhook.UnknownEvent, e)
		assert.False(t, e.IsKnown())
		assert.Equal(t, "unknown", e.String())
	})

	t.Run("parse events drops unknown and duplicates", func(t *testing.T) {
		got := webhook.ParseEvents([]string{"survey.sent", "invoice.paid", "survey.sent", "complaint.created"})
		assert.Equal(t, []webhook.Event{webhook.SurveySent, webhook.ComplaintCreated}, got)
		assert.Equal(t, []string{"survey.sent", "complaint.created"}, webhook.EventTags(got))
	})
}

func TestStatus(t *testing.T) {
	for _, s := range webhook.Statuses() {
		assert.NoError(t, s.Validate())
		parsed, err := webhook.NewStatus(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := webhook.NewStatus("delivering")
	assert.Error(t, err)
	assert.False(t, webhook.Delivery{Status: webhook.Status(0)}.IsDue(time.Now()))
	assert.True(t, webhook.Delivered.IsFinal())
	assert.True(t, webhook.Failed.IsFinal())
	assert.False(t, webhook.Pending.IsFinal())
	assert.False(t, webhook.Retrying.IsFinal())
	assert.Error(t, webhook.Status(0).Validate())
}

func TestDelivery_IsDue(t *testing.T) {
	c := newClock()
	past := c.Now().Add(-time.Second)
	future := c.Now().Add(time.Second)

	assert.True(t, webhook.Delivery{Status: webhook.Pending}.IsDue(c.Now()))
	assert.True(t, webhook.Delivery{Status: webhook.Retrying, NextRetryAt: &past}.IsDue(c.Now()))
	assert.True(t, webhook.Delivery{Status: webhook.Retrying}.IsDue(c.Now()))
	assert.False(t, webhook.Delivery{Status: webhook.Retrying, NextRetryAt: &future}.IsDue(c.Now()))
	assert.False(t, webhook.Delivery{Status: webhook.Delivered}.IsDue(c.Now()))
	assert.False(t, webhook.Delivery{Status: webhook.Failed}.IsDue(c.Now()))
}
