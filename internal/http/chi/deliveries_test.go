package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleDelivery() webhook.Delivery {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	attempted := created.Add(time.Second)
	next := attempted.Add(60 * time.Second)
	code := 503
	return webhook.Delivery{
		ID:                 "d-1",
		TenantID:           testTenant,
		SubscriptionID:     "sub-1",
		Event:              webhook.SurveyCompleted,
		Payload:            []byte(`{"surveyId":"s-9","score":9}`),
		Status:             webhook.Retrying,
		AttemptCount:       1,
		LastAttemptAt:      &attempted,
		NextRetryAt:        &next,
		ResponseStatusCode: &code,
		ErrorMessage:       "transient delivery failure: receiver responded 503",
		Signature:          "ab12",
		CreatedAt:          created,
		UpdatedAt:          attempted,
	}
}

func TestGetDeliveries(t *testing.T) {
	t.Run("passes the limit", func(t *testing.T) {
		h := newHarness(t)
		h.deliveries.On("ListDeliveries", mock.Anything, testTenant, "sub-1", 10).
			Return([]webhook.Delivery{sampleDelivery()}, nil)

		rec := h.do(t, http.MethodGet, "/webhooks/sub-1/deliveries?limit=10", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "retrying", got[0]["status"])
		assert.Equal(t, "survey.completed", got[0]["event"])
		assert.Equal(t, float64(503), got[0]["responseStatusCode"])
		assert.Equal(t, map[string]any{"surveyId": "s-9", "score": float64(9)}, got[0]["payload"])
	})

	t.Run("no limit uses the service default", func(t *testing.T) {
		h := newHarness(t)
		h.deliveries.On("ListDeliveries", mock.Anything, testTenant, "sub-1", 0).Return([]webhook.Delivery{}, nil)

		rec := h.do(t, http.MethodGet, "/webhooks/sub-1/deliveries", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("non numeric limit", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodGet, "/webhooks/sub-1/deliveries?limit=ten", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeInvalidInput, decodeError(t, rec).Code)
	})
}

func TestGetDelivery(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		h := newHarness(t)
		h.deliveries.On("GetDelivery", mock.Anything, testTenant, "d-1").Return(sampleDelivery(), nil)

		rec := h.do(t, http.MethodGet, "/webhooks/deliveries/d-1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got deliveryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "d-1", got.ID)
		assert.Equal(t, 1, got.AttemptCount)
		require.NotNil(t, got.NextRetryAt)
	})

	t.Run("not found", func(t *testing.T) {
		h := newHarness(t)
		h.deliveries.On("GetDelivery", mock.Anything, testTenant, "d-404").
			Return(webhook.Delivery{}, fmt.Errorf("getting delivery: %w", webhook.ErrNotFound))

		rec := h.do(t, http.MethodGet, "/webhooks/deliveries/d-404", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRetryDelivery(t *testing.T) {
	t.Run("returns the updated delivery", func(t *testing.T) {
		h := newHarness(t)
		done := sampleDelivery()
		done.Status = webhook.Delivered
		done.AttemptCount = 2
		done.NextRetryAt = nil
		h.deliveries.On("RetryDelivery", mock.Anything, testTenant, "d-1").Return(done, nil)

		rec := h.do(t, http.MethodPost, "/webhooks/deliveries/d-1/retry", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got deliveryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "delivered", got.Status)
		assert.Equal(t, 2, got.AttemptCount)
		assert.Nil(t, got.NextRetryAt)
	})

	t.Run("delivered is INVALID_OPERATION", func(t *testing.T) {
		h := newHarness(t)
		h.deliveries.On("RetryDelivery", mock.Anything, testTenant, "d-1").
			Return(webhook.Delivery{}, fmt.Errorf("retrying delivery d-1: already delivered: %w", webhook.ErrInvalidOperation))

		rec := h.do(t, http.MethodPost, "/webhooks/deliveries/d-1/retry", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, codeInvalidOperation, decodeError(t, rec).Code)
	})
}

func TestGetEvents(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/webhooks/events", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(webhook.Events()))
	assert.Equal(t, "journey.stage_changed", got[0].Event)
	assert.Contains(t, got, eventResponse{Event: "appointment.cancelled"})
}

func TestPostEvent(t *testing.T) {
	t.Run("publishes and returns the delivery ids", func(t *testing.T) {
		h := newHarness(t)
		h.publisher.On("PublishData", mock.Anything, testTenant, webhook.ComplaintCreated, mock.MatchedBy(func(data any) bool {
			raw, ok := data.(json.RawMessage)
			return ok && string(raw) == `{"complaintId":"c-1"}`
		})).Return([]webhook.Delivery{{ID: "d-1"}, {ID: "d-2"}}, nil)

		rec := h.do(t, http.MethodPost, "/webhooks/events", `{"event":"complaint.created","data":{"complaintId":"c-1"}}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"event":"complaint.created","deliveryIds":["d-1","d-2"]}`, rec.Body.String())
	})

	t.Run("tag outside the catalog publishes nothing", func(t *testing.T) {
		h := newHarness(t)
		h.publisher.On("PublishData", mock.Anything, testTenant, webhook.UnknownEvent, mock.Anything).
			Return([]webhook.Delivery{}, nil)

		rec := h.do(t, http.MethodPost, "/webhooks/events", `{"event":"billing.paid","data":{}}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"event":"billing.paid","deliveryIds":[]}`, rec.Body.String())
	})

	t.Run("event is required", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/webhooks/events", `{"data":{}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		h := newHarness(t)
		h.publisher.On("PublishData", mock.Anything, testTenant, webhook.SurveySent, mock.Anything).
			Return(nil, fmt.Errorf("recording deliveries: %w", fmt.Errorf("disk full")))

		rec := h.do(t, http.MethodPost, "/webhooks/events", `{"event":"survey.sent","data":{"surveyId":"s-1"}}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRenderPayload(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(renderPayload([]byte(`{"a":1}`))))
	assert.Equal(t, `"plain text"`, string(renderPayload([]byte("plain text"))))
	assert.Equal(t, `""`, string(renderPayload(nil)))
}
