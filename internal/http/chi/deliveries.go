package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/clinic-webhooks/webhook"
)

type deliveryResponse struct {
	ID                 string          `json:"id"`
	SubscriptionID     string          `json:"subscriptionId"`
	Event              string          `json:"event"`
	Payload            json.RawMessage `json:"payload"`
	Status             string          `json:"status"`
	AttemptCount       int             `json:"attemptCount"`
	LastAttemptAt      *time.Time      `json:"lastAttemptAt"`
	NextRetryAt        *time.Time      `json:"nextRetryAt"`
	ResponseStatusCode *int            `json:"responseStatusCode"`
	ErrorMessage       string          `json:"errorMessage"`
	Signature          string          `json:"signature"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func toDeliveryResponse(d webhook.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:                 d.ID,
		SubscriptionID:     d.SubscriptionID,
		Event:              d.Event.String(),
		Payload:            renderPayload(d.Payload),
		Status:             d.Status.String(),
		AttemptCount:       d.AttemptCount,
		LastAttemptAt:      d.LastAttemptAt,
		NextRetryAt:        d.NextRetryAt,
		ResponseStatusCode: d.ResponseStatusCode,
		ErrorMessage:       d.ErrorMessage,
		Signature:          d.Signature,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// renderPayload embeds JSON payloads as is and quotes anything else
func renderPayload(p []byte) json.RawMessage {
	if len(p) > 0 && json.Valid(p) {
		return json.RawMessage(p)
	}
	quoted, _ := json.Marshal(string(p))
	return quoted
}

type eventResponse struct {
	Event string `json:"event"`
}

type publishRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type publishResponse struct {
	Event       string   `json:"event"`
	DeliveryIDs []string `json:"deliveryIds"`
}

// getDeliveries handles GET /webhooks/{id}/deliveries?limit=N
func getDeliveries(svc webhook.DeliveryUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidInput, "limit: must be an integer")
				return
			}
			limit = n
		}

		all, err := svc.ListDeliveries(r.Context(), tenantID(r), chi.URLParam(r, "id"), limit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		result := make([]deliveryResponse, 0, len(all))
		for _, d := range all {
			result = append(result, toDeliveryResponse(d))
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// getDelivery handles GET /webhooks/deliveries/{id}
func getDelivery(svc webhook.DeliveryUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetDelivery(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeliveryResponse(d))
	})
}

// retryDelivery handles POST /webhooks/deliveries/{id}/retry
func retryDelivery(svc webhook.DeliveryUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.RetryDelivery(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeliveryResponse(d))
	})
}

// getEvents handles GET /webhooks/events
func getEvents() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events := webhook.Events()
		result := make([]eventResponse, 0, len(events))
		for _, e := range events {
			result = append(result, eventResponse{Event: e.String()})
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// postEvent handles POST /webhooks/events, the ingress for services that own domain events
func postEvent(publisher webhook.EventPublisher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req publishRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Event == "" {
			writeError(w, http.StatusBadRequest, codeInvalidInput, "event: is required")
			return
		}

		// tags outside the catalog publish nothing
		event, _ := webhook.ParseEvent(req.Event)
		var data any
		if len(req.Data) > 0 {
			data = req.Data
		}

		deliveries, err := publisher.PublishData(r.Context(), tenantID(r), event, data)
		if err != nil {
			respondError(w, r, err)
			return
		}

		ids := make([]string, 0, len(deliveries))
		for _, d := range deliveries {
			ids = append(ids, d.ID)
		}
		writeJSON(w, http.StatusAccepted, publishResponse{Event: req.Event, DeliveryIDs: ids})
	})
}
