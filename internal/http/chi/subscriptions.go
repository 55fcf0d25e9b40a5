package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/clinic-webhooks/webhook"
)

/* HTTP layer DTOs for the subscription API
 * Separate from domain entities to avoid leaking internal structure
 */

// defaultMaxRetries applies when a create request leaves maxRetries out
const defaultMaxRetries = 3

type createSubscriptionRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	TargetURL         string   `json:"targetUrl"`
	SubscribedEvents  []string `json:"subscribedEvents"`
	MaxRetries        *int     `json:"maxRetries"`
	RetryDelaySeconds int      `json:"retryDelaySeconds"`
}

// updateSubscriptionRequest is partial: absent fields are left untouched
type updateSubscriptionRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	TargetURL         *string  `json:"targetUrl"`
	SubscribedEvents  []string `json:"subscribedEvents"`
	MaxRetries        *int     `json:"maxRetries"`
	RetryDelaySeconds *int     `json:"retryDelaySeconds"`
}

type subscriptionResponse struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenantId"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	TargetURL         string    `json:"targetUrl"`
	Secret            string    `json:"secret"`
	SubscribedEvents  []string  `json:"subscribedEvents"`
	IsActive          bool      `json:"isActive"`
	MaxRetries        int       `json:"maxRetries"`
	RetryDelaySeconds int       `json:"retryDelaySeconds"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// toSubscriptionResponse renders s; the full secret only when revealSecret is set
func toSubscriptionResponse(s webhook.Subscription, revealSecret bool) subscriptionResponse {
	secret := s.Secret.Masked()
	if revealSecret {
		secret = s.Secret.String()
	}
	return subscriptionResponse{
		ID:                s.ID,
		TenantID:          s.TenantID,
		Name:              s.Name,
		Description:       s.Description,
		TargetURL:         s.TargetURL,
		Secret:            secret,
		SubscribedEvents:  webhook.EventTags(s.SubscribedEvents),
		IsActive:          s.IsActive,
		MaxRetries:        s.MaxRetries,
		RetryDelaySeconds: s.RetryDelaySeconds,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}

// postSubscription handles POST /webhooks
func postSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createSubscriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		maxRetries := defaultMaxRetries
		if req.MaxRetries != nil {
			maxRetries = *req.MaxRetries
		}

		s, err := svc.Create(r.Context(), tenantID(r), webhook.CreateSubscription{
			Name:              req.Name,
			Description:       req.Description,
			TargetURL:         req.TargetURL,
			SubscribedEvents:  req.SubscribedEvents,
			MaxRetries:        maxRetries,
			RetryDelaySeconds: req.RetryDelaySeconds,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSubscriptionResponse(s, true))
	})
}

// getSubscriptions handles GET /webhooks
func getSubscriptions(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context(), tenantID(r))
		if err != nil {
			respondError(w, r, err)
			return
		}
		result := make([]subscriptionResponse, 0, len(all))
		for _, s := range all {
			result = append(result, toSubscriptionResponse(s, false))
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// getSubscription handles GET /webhooks/{id}
func getSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Get(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(s, false))
	})
}

// putSubscription handles PUT /webhooks/{id}
func putSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req updateSubscriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, err := svc.Update(r.Context(), tenantID(r), chi.URLParam(r, "id"), webhook.SubscriptionPatch{
			Name:              req.Name,
			Description:       req.Description,
			TargetURL:         req.TargetURL,
			SubscribedEvents:  req.SubscribedEvents,
			MaxRetries:        req.MaxRetries,
			RetryDelaySeconds: req.RetryDelaySeconds,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(s, false))
	})
}

// deleteSubscription handles DELETE /webhooks/{id}
func deleteSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), tenantID(r), chi.URLParam(r, "id")); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// activateSubscription handles POST /webhooks/{id}/activate
func activateSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Activate(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(s, false))
	})
}

// deactivateSubscription handles POST /webhooks/{id}/deactivate
func deactivateSubscription(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Deactivate(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(s, false))
	})
}

// regenerateSecret handles POST /webhooks/{id}/regenerate-secret
func regenerateSecret(svc webhook.SubscriptionUseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.RegenerateSecret(r.Context(), tenantID(r), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(s, true))
	})
}
