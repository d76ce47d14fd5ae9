//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package policy

import (
	"context"
	"encoding/json"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/polyauthz/groupgate/core"
	"github.com/polyauthz/groupgate/util"
)

const (
	policyCachePrefix = "policy:grp:"
)

// Repository is the interface for the group-policy store
type Repository interface {
	GetBatch(ctx context.Context, groups []string) ([]core.GroupPolicy, error)
	Get(ctx context.Context, group string) (core.GroupPolicy, error)
	Upsert(ctx context.Context, record core.GroupPolicy) (core.GroupPolicy, error)
	Delete(ctx context.Context, group string) error
}

type repository struct {
	db     *gorm.DB
	rdb    *redis.Client
	mc     *memcache.Client
	config util.Config
}

// NewRepository creates a new policy repository
func NewRepository(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) Repository {
	return &repository{db, rdb, mc, config}
}

// GetBatch retrieves the records of all given groups in one batched
// round trip per tier: one memcache GetMulti, then one IN query for
// the misses. Groups with no record are simply absent from the
// result. Cache hits come first in requested-key order, then store
// rows in store-return order.
func (r *repository) GetBatch(ctx context.Context, groups []string) ([]core.GroupPolicy, error) {
	ctx, span := tracer.Start(ctx, "Policy.Repository.GetBatch")
	defer span.End()

	keys := make([]string, len(groups))
	keytable := make(map[string]string)
	for i, group := range groups {
		key := policyCachePrefix + group
		keys[i] = key
		keytable[key] = group
	}

	cache, err := r.mc.GetMulti(keys)
	if err != nil {
		span.RecordError(err)
		// degrade to the store, not an error
	}

	var result []core.GroupPolicy
	var missed []string
	for _, key := range keys {
		if cache[key] != nil {
			var record core.GroupPolicy
			err = json.Unmarshal(cache[key].Value, &record)
			if err != nil {
				span.RecordError(err)
				missed = append(missed, keytable[key])
				continue
			}
			result = append(result, record)
		} else {
			missed = append(missed, keytable[key])
		}
	}

	if len(missed) == 0 {
		return result, nil
	}

	var rows []core.GroupPolicy
	err = r.db.WithContext(ctx).Where("group_name IN ?", missed).Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to query group policies")
	}

	for _, row := range rows {
		result = append(result, row)

		body, err := json.Marshal(row)
		if err != nil {
			span.RecordError(err)
			continue
		}
		err = r.mc.Set(&memcache.Item{
			Key:        policyCachePrefix + row.GroupName,
			Value:      body,
			Expiration: r.config.Authorizer.CacheTTL,
		})
		if err != nil {
			span.RecordError(err)
		}
	}

	return result, nil
}

// Get returns a single record by group name
func (r *repository) Get(ctx context.Context, group string) (core.GroupPolicy, error) {
	ctx, span := tracer.Start(ctx, "Policy.Repository.Get")
	defer span.End()

	var record core.GroupPolicy
	err := r.db.WithContext(ctx).First(&record, "group_name = ?", group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.GroupPolicy{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.GroupPolicy{}, err
	}

	return record, nil
}

// Upsert writes a record, drops its cache entry and announces the
// change
func (r *repository) Upsert(ctx context.Context, record core.GroupPolicy) (core.GroupPolicy, error) {
	ctx, span := tracer.Start(ctx, "Policy.Repository.Upsert")
	defer span.End()

	record.Revision = xid.New().String()

	err := r.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		span.RecordError(err)
		return core.GroupPolicy{}, errors.Wrap(err, "failed to save group policy")
	}

	r.invalidate(ctx, record.GroupName, record.Revision)

	return record, nil
}

// Delete removes a record, drops its cache entry and announces the
// change
func (r *repository) Delete(ctx context.Context, group string) error {
	ctx, span := tracer.Start(ctx, "Policy.Repository.Delete")
	defer span.End()

	result := r.db.WithContext(ctx).Delete(&core.GroupPolicy{}, "group_name = ?", group)
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrap(result.Error, "failed to delete group policy")
	}
	if result.RowsAffected == 0 {
		return core.NewErrorNotFound()
	}

	r.invalidate(ctx, group, "")

	return nil
}

func (r *repository) invalidate(ctx context.Context, group string, revision string) {
	span := trace.SpanFromContext(ctx)

	err := r.mc.Delete(policyCachePrefix + group)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		span.RecordError(err)
	}

	event, err := json.Marshal(ChangeEvent{GroupName: group, Revision: revision})
	if err != nil {
		span.RecordError(err)
		return
	}
	err = r.rdb.Publish(ctx, ChangeChannel, event).Err()
	if err != nil {
		span.RecordError(err)
	}
}
