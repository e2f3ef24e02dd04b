// Package cache keeps a short-lived Redis copy of the raw company rows.
// Derived billing status is never cached: it depends on the observation time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/tenant-billing/internal/domain"
)

const snapshotKey = "tenant-billing:companies:snapshot"

// CompanySnapshot caches the company list fetched from the database
type CompanySnapshot struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCompanySnapshot returns a snapshot cache. A zero ttl disables caching.
func NewCompanySnapshot(client *redis.Client, ttl time.Duration) *CompanySnapshot {
	return &CompanySnapshot{
		redis: client,
		ttl:   ttl,
	}
}

// Get returns the cached companies. ok is false on a miss.
func (c *CompanySnapshot) Get(ctx context.Context) ([]domain.Company, bool, error) {
	if c.disabled() {
		return nil, false, nil
	}

	raw, err := c.redis.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var companies []domain.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, false, err
	}

	return companies, true, nil
}

// Set stores the companies for the configured ttl
func (c *CompanySnapshot) Set(ctx context.Context, companies []domain.Company) error {
	if c.disabled() {
		return nil
	}

	raw, err := json.Marshal(companies)
	if err != nil {
		return err
	}

	return c.redis.Set(ctx, snapshotKey, raw, c.ttl).Err()
}

// Invalidate drops the snapshot after a write
func (c *CompanySnapshot) Invalidate(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	return c.redis.Del(ctx, snapshotKey).Err()
}

func (c *CompanySnapshot) disabled() bool {
	return c == nil || c.redis == nil || c.ttl <= 0
}
