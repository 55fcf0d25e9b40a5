package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/signature"
)

/*
PostgreSQL implementation of webhook.Repository

- subscribed_events is a TEXT[] holding event tags
- status is stored by name so rows stay readable from psql
- deliveries have no foreign key to subscriptions: history outlives the subscription
- UpdateDelivery is a compare-and-set on (status, attempt_count)
*/
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a repository with a custom pool
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: idle connections kept in the pool
// maxLifeMinutes: how long a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

const subscriptionColumns = `id, tenant_id, name, description, target_url, secret, subscribed_events,
		is_active, max_retries, retry_delay_seconds, created_at, updated_at`

const deliveryColumns = `id, tenant_id, subscription_id, event, payload, status, attempt_count,
		last_attempt_at, next_retry_at, response_status_code, error_message, signature, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (webhook.Subscription, error) {
	var (
		s      webhook.Subscription
		secret string
		tags   pq.StringArray
	)
	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.Description,
		&s.TargetURL,
		&secret,
		&tags,
		&s.IsActive,
		&s.MaxRetries,
		&s.RetryDelaySeconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return webhook.Subscription{}, err
	}

	s.Secret, err = signature.ParseSecret(secret)
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("subscription %s: %w", s.ID, err)
	}
	s.SubscribedEvents = webhook.ParseEvents(tags)
	return s, nil
}

func scanDelivery(row scanner) (webhook.Delivery, error) {
	var (
		d          webhook.Delivery
		event      string
		status     string
		lastAt     sql.NullTime
		nextAt     sql.NullTime
		statusCode sql.NullInt64
	)
	err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.SubscriptionID,
		&event,
		&d.Payload,
		&status,
		&d.AttemptCount,
		&lastAt,
		&nextAt,
		&statusCode,
		&d.ErrorMessage,
		&d.Signature,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return webhook.Delivery{}, err
	}

	d.Event, _ = webhook.ParseEvent(event)
	if d.Status, err = webhook.NewStatus(status); err != nil {
		return webhook.Delivery{}, fmt.Errorf("decoding delivery %s: %w", d.ID, err)
	}
	if lastAt.Valid {
		t := lastAt.Time
		d.LastAttemptAt = &t
	}
	if nextAt.Valid {
		t := nextAt.Time
		d.NextRetryAt = &t
	}
	if statusCode.Valid {
		c := int(statusCode.Int64)
		d.ResponseStatusCode = &c
	}
	return d, nil
}

// CreateSubscription inserts a new subscription
func (r *Repository) CreateSubscription(ctx context.Context, s webhook.Subscription) error {
	query := `
		INSERT INTO webhook_subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		s.TenantID,
		s.Name,
		s.Description,
		s.TargetURL,
		s.Secret.String(),
		pq.Array(webhook.EventTags(s.SubscribedEvents)),
		s.IsActive,
		s.MaxRetries,
		s.RetryDelaySeconds,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

// GetSubscription returns one subscription of the tenant
func (r *Repository) GetSubscription(ctx context.Context, tenantID, id string) (webhook.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM webhook_subscriptions WHERE tenant_id = $1 AND id = $2"

	s, err := scanSubscription(r.DB.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Subscription{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}
	return s, nil
}

// ListSubscriptions returns the tenant's subscriptions, oldest first
func (r *Repository) ListSubscriptions(ctx context.Context, tenantID string) ([]webhook.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM webhook_subscriptions WHERE tenant_id = $1 ORDER BY created_at, id"
	return r.selectSubscriptions(ctx, query, tenantID)
}

// FindActiveByEvent returns active subscriptions of the tenant listing the event
func (r *Repository) FindActiveByEvent(ctx context.Context, tenantID string, event webhook.Event) ([]webhook.Subscription, error) {
	query := "SELECT " + subscriptionColumns + ` FROM webhook_subscriptions
		WHERE tenant_id = $1 AND is_active = TRUE AND $2 = ANY(subscribed_events)
		ORDER BY created_at, id`
	return r.selectSubscriptions(ctx, query, tenantID, event.String())
}

func (r *Repository) selectSubscriptions(ctx context.Context, query string, args ...any) ([]webhook.Subscription, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []webhook.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateSubscription overwrites the mutable fields of a subscription
func (r *Repository) UpdateSubscription(ctx context.Context, s webhook.Subscription) error {
	query := `
		UPDATE webhook_subscriptions
		SET name = $1, description = $2, target_url = $3, secret = $4, subscribed_events = $5,
			is_active = $6, max_retries = $7, retry_delay_seconds = $8, updated_at = $9
		WHERE tenant_id = $10 AND id = $11
	`

	result, err := r.DB.ExecContext(ctx, query,
		s.Name,
		s.Description,
		s.TargetURL,
		s.Secret.String(),
		pq.Array(webhook.EventTags(s.SubscribedEvents)),
		s.IsActive,
		s.MaxRetries,
		s.RetryDelaySeconds,
		s.UpdatedAt,
		s.TenantID,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	return requireAffected(result)
}

// DeleteSubscription removes a subscription; its deliveries are kept
func (r *Repository) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	query := "DELETE FROM webhook_subscriptions WHERE tenant_id = $1 AND id = $2"

	result, err := r.DB.ExecContext(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return requireAffected(result)
}

// CreateDeliveries inserts the batch in a single transaction
func (r *Repository) CreateDeliveries(ctx context.Context, deliveries []webhook.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO webhook_deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	for _, d := range deliveries {
		_, err := tx.ExecContext(ctx, query,
			d.ID,
			d.TenantID,
			d.SubscriptionID,
			d.Event.String(),
			d.Payload,
			d.Status.String(),
			d.AttemptCount,
			nullTime(d.LastAttemptAt),
			nullTime(d.NextRetryAt),
			nullInt(d.ResponseStatusCode),
			d.ErrorMessage,
			d.Signature,
			d.CreatedAt,
			d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting delivery %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deliveries: %w", err)
	}
	return nil
}

// GetDelivery returns one delivery of the tenant
func (r *Repository) GetDelivery(ctx context.Context, tenantID, id string) (webhook.Delivery, error) {
	query := "SELECT " + deliveryColumns + " FROM webhook_deliveries WHERE tenant_id = $1 AND id = $2"
	return r.selectDelivery(ctx, query, tenantID, id)
}

// FindDelivery returns a delivery regardless of tenant
func (r *Repository) FindDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	query := "SELECT " + deliveryColumns + " FROM webhook_deliveries WHERE id = $1"
	return r.selectDelivery(ctx, query, id)
}

func (r *Repository) selectDelivery(ctx context.Context, query string, args ...any) (webhook.Delivery, error) {
	d, err := scanDelivery(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Delivery{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("selecting delivery: %w", err)
	}
	return d, nil
}

// ListDeliveries returns the newest deliveries of a subscription first
func (r *Repository) ListDeliveries(ctx context.Context, tenantID, subscriptionID string, limit int) ([]webhook.Delivery, error) {
	query := "SELECT " + deliveryColumns + ` FROM webhook_deliveries
		WHERE tenant_id = $1 AND subscription_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`
	return r.selectDeliveries(ctx, query, tenantID, subscriptionID, limit)
}

// ListDue returns due Retrying rows and stale Pending rows, oldest first
func (r *Repository) ListDue(ctx context.Context, now, stalePendingBefore time.Time, limit int) ([]webhook.Delivery, error) {
	query := "SELECT " + deliveryColumns + ` FROM webhook_deliveries
		WHERE (status = 'retrying' AND (next_retry_at IS NULL OR next_retry_at <= $1))
			OR (status = 'pending' AND created_at < $2)
		ORDER BY COALESCE(next_retry_at, created_at)
		LIMIT $3`
	return r.selectDeliveries(ctx, query, now, stalePendingBefore, limit)
}

func (r *Repository) selectDeliveries(ctx context.Context, query string, args ...any) ([]webhook.Delivery, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting deliveries: %w", err)
	}
	defer rows.Close()

	list := []webhook.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliveries: %w", err)
	}
	return list, nil
}

// UpdateDelivery writes d only if the stored row still matches the observed state
func (r *Repository) UpdateDelivery(ctx context.Context, d webhook.Delivery, observed webhook.Observed) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, attempt_count = $2, last_attempt_at = $3, next_retry_at = $4,
			response_status_code = $5, error_message = $6, signature = $7, updated_at = $8
		WHERE id = $9 AND status = $10 AND attempt_count = $11
	`

	result, err := r.DB.ExecContext(ctx, query,
		d.Status.String(),
		d.AttemptCount,
		nullTime(d.LastAttemptAt),
		nullTime(d.NextRetryAt),
		nullInt(d.ResponseStatusCode),
		d.ErrorMessage,
		d.Signature,
		d.UpdatedAt,
		d.ID,
		observed.Status.String(),
		observed.AttemptCount,
	)
	if err != nil {
		return fmt.Errorf("updating delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM webhook_deliveries WHERE id = $1)", d.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking delivery: %w", err)
	}
	if !exists {
		return webhook.ErrNotFound
	}
	return webhook.ErrStatusConflict
}

// CountByStatus returns the number of deliveries per status
func (r *Repository) CountByStatus(ctx context.Context) (map[webhook.Status]int64, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM webhook_deliveries GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting deliveries: %w", err)
	}
	defer rows.Close()

	counts := make(map[webhook.Status]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		s, err := webhook.NewStatus(status)
		if err != nil {
			return nil, fmt.Errorf("counting deliveries: %w", err)
		}
		counts[s] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// CountDeliveredSince returns how many deliveries succeeded after since
func (r *Repository) CountDeliveredSince(ctx context.Context, since time.Time) (int64, error) {
	query := "SELECT COUNT(*) FROM webhook_deliveries WHERE status = 'delivered' AND last_attempt_at > $1"

	var n int64
	if err := r.DB.QueryRowContext(ctx, query, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting delivered: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS webhook_subscriptions (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		target_url TEXT NOT NULL,
		secret TEXT NOT NULL,
		subscribed_events TEXT[] NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		max_retries INTEGER NOT NULL,
		retry_delay_seconds INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_subscriptions_tenant
		ON webhook_subscriptions (tenant_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS webhook_deliveries (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		subscription_id TEXT NOT NULL,
		event TEXT NOT NULL,
		payload BYTEA NOT NULL,
		status TEXT NOT NULL,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_attempt_at TIMESTAMPTZ,
		next_retry_at TIMESTAMPTZ,
		response_status_code INTEGER,
		error_message TEXT NOT NULL DEFAULT '',
		signature TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_subscription
		ON webhook_deliveries (tenant_id, subscription_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_due
		ON webhook_deliveries (status, next_retry_at)`,
}

// Migrate creates the tables and indexes if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// DropTables removes both tables (useful for tests)
func (r *Repository) DropTables(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS webhook_deliveries, webhook_subscriptions CASCADE")
	if err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
