package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/mocks"
	"github.com/marcelsud/clinic-webhooks/webhook/signature"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/*
Handler tests run the full router against mocked use cases,
so routing, the tenant middleware and the error envelope are covered together.
*/

const (
	testTenant = "clinic-1"
	testSecret = "whsec_AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
)

type harness struct {
	subscriptions *mocks.SubscriptionUseCase
	deliveries    *mocks.DeliveryUseCase
	publisher     *mocks.EventPublisher
	handler       http.Handler
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	h := harness{
		subscriptions: mocks.NewSubscriptionUseCase(t),
		deliveries:    mocks.NewDeliveryUseCase(t),
		publisher:     mocks.NewEventPublisher(t),
	}
	opts = append([]Option{WithAccessLog(zerolog.Nop())}, opts...)
	h.handler = Handlers(context.Background(), h.subscriptions, h.deliveries, h.publisher, opts...)
	return h
}

func (h harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Tenant-ID", testTenant)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func sampleSubscription(t *testing.T) webhook.Subscription {
	t.Helper()
	secret, err := signature.ParseSecret(testSecret)
	require.NoError(t, err)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return webhook.Subscription{
		ID:                "sub-1",
		TenantID:          testTenant,
		Name:              "CRM",
		TargetURL:         "https://crm.example.com/hook",
		Secret:            secret,
		SubscribedEvents:  []webhook.Event{webhook.SurveyCompleted, webhook.ComplaintCreated},
		MaxRetries:        3,
		RetryDelaySeconds: 60,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()

	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("webhook_queue_length 0\n"))
	})
	h := newHarness(t, WithMetrics(metrics))
	rec := httptest.NewRecorder()

	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webhook_queue_length")
}

func TestMissingTenant(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()

	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeMissingTenant, decodeError(t, rec).Code)
}

func TestCustomTenantHeader(t *testing.T) {
	h := newHarness(t, WithTenantHeader("X-Clinic"))
	h.subscriptions.On("List", mock.Anything, "clinic-9").Return([]webhook.Subscription{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
	req.Header.Set("X-Clinic", "clinic-9")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPostSubscription(t *testing.T) {
	t.Run("returns the full secret once", func(t *testing.T) {
		h := newHarness(t)
		sub := sampleSubscription(t)
		h.subscriptions.On("Create", mock.Anything, testTenant, webhook.CreateSubscription{
			Name:              "CRM",
			TargetURL:         "https://crm.example.com/hook",
			SubscribedEvents:  []string{"survey.completed", "complaint.created"},
			MaxRetries:        3,
			RetryDelaySeconds: 60,
		}).Return(sub, nil)

		rec := h.do(t, http.MethodPost, "/webhooks", `{
			"name": "CRM",
			"targetUrl": "https://crm.example.com/hook",
			"subscribedEvents": ["survey.completed", "complaint.created"],
			"retryDelaySeconds": 60
		}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got subscriptionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "sub-1", got.ID)
		assert.Equal(t, testSecret, got.Secret)
		assert.Equal(t, []string{"survey.completed", "complaint.created"}, got.SubscribedEvents)
		assert.False(t, got.IsActive)
	})

	t.Run("explicit zero retries is kept", func(t *testing.T) {
		h := newHarness(t)
		h.subscriptions.On("Create", mock.Anything, testTenant, mock.MatchedBy(func(in webhook.CreateSubscription) bool {
			return in.MaxRetries == 0
		})).Return(sampleSubscription(t), nil)

		rec := h.do(t, http.MethodPost, "/webhooks", `{"name":"CRM","targetUrl":"https://crm.example.com/hook","subscribedEvents":["survey.sent"],"maxRetries":0}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("validation error is INVALID_INPUT", func(t *testing.T) {
		h := newHarness(t)
		verr := &webhook.ValidationError{Field: "targetUrl", Reason: "must be an absolute URL"}
		h.subscriptions.On("Create", mock.Anything, testTenant, mock.Anything).
			Return(webhook.Subscription{}, fmt.Errorf("validating subscription: %w", verr))

		rec := h.do(t, http.MethodPost, "/webhooks", `{"name":"CRM","targetUrl":"not a url","subscribedEvents":["survey.sent"]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		e := decodeError(t, rec)
		assert.Equal(t, codeInvalidInput, e.Code)
		assert.Equal(t, "targetUrl: must be an absolute URL", e.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/webhooks", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeInvalidInput, decodeError(t, rec).Code)
	})
}

func TestGetSubscription(t *testing.T) {
	t.Run("masks the secret", func(t *testing.T) {
		h := newHarness(t)
		h.subscriptions.On("Get", mock.Anything, testTenant, "sub-1").Return(sampleSubscription(t), nil)

		rec := h.do(t, http.MethodGet, "/webhooks/sub-1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got subscriptionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "whsec_AAEC...Hh8=", got.Secret)
		assert.NotContains(t, rec.Body.String(), testSecret)
	})

	t.Run("other tenant is NOT_FOUND", func(t *testing.T) {
		h := newHarness(t)
		h.subscriptions.On("Get", mock.Anything, testTenant, "sub-2").
			Return(webhook.Subscription{}, fmt.Errorf("getting subscription: %w", webhook.ErrNotFound))

		rec := h.do(t, http.MethodGet, "/webhooks/sub-2", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeNotFound, decodeError(t, rec).Code)
	})
}

func TestGetSubscriptions(t *testing.T) {
	h := newHarness(t)
	h.subscriptions.On("List", mock.Anything, testTenant).Return([]webhook.Subscription{sampleSubscription(t)}, nil)

	rec := h.do(t, http.MethodGet, "/webhooks", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []subscriptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "whsec_AAEC...Hh8=", got[0].Secret)
}

func TestPutSubscription(t *testing.T) {
	h := newHarness(t)
	updated := sampleSubscription(t)
	updated.Name = "CRM v2"
	h.subscriptions.On("Update", mock.Anything, testTenant, "sub-1", mock.MatchedBy(func(p webhook.SubscriptionPatch) bool {
		return p.Name != nil && *p.Name == "CRM v2" && p.TargetURL == nil && p.SubscribedEvents == nil
	})).Return(updated, nil)

	rec := h.do(t, http.MethodPut, "/webhooks/sub-1", `{"name":"CRM v2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got subscriptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "CRM v2", got.Name)
}

func TestDeleteSubscription(t *testing.T) {
	h := newHarness(t)
	h.subscriptions.On("Delete", mock.Anything, testTenant, "sub-1").Return(nil)

	rec := h.do(t, http.MethodDelete, "/webhooks/sub-1", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestActivateDeactivate(t *testing.T) {
	h := newHarness(t)
	active := sampleSubscription(t)
	active.IsActive = true
	h.subscriptions.On("Activate", mock.Anything, testTenant, "sub-1").Return(active, nil)
	h.subscriptions.On("Deactivate", mock.Anything, testTenant, "sub-1").Return(sampleSubscription(t), nil)

	rec := h.do(t, http.MethodPost, "/webhooks/sub-1/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isActive":true`)

	rec = h.do(t, http.MethodPost, "/webhooks/sub-1/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isActive":false`)
}

func TestRegenerateSecret(t *testing.T) {
	h := newHarness(t)
	h.subscriptions.On("RegenerateSecret", mock.Anything, testTenant, "sub-1").Return(sampleSubscription(t), nil)

	rec := h.do(t, http.MethodPost, "/webhooks/sub-1/regenerate-secret", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got subscriptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testSecret, got.Secret)
}

func TestInternalErrorIsNotEchoed(t *testing.T) {
	h := newHarness(t)
	h.subscriptions.On("List", mock.Anything, testTenant).
		Return(nil, fmt.Errorf("listing subscriptions: %w", fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused")))

	rec := h.do(t, http.MethodGet, "/webhooks", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, codeInternal, e.Code)
	assert.NotContains(t, e.Message, "10.0.0.5")
}
