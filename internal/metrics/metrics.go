// Copyright 2026 The SNFS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics is the observability layer for the dispatcher and the
// cache layer: an OpenTelemetry meter with a handful of counters, keyed
// by attributes rather than by metric name per dimension. Pure
// observability; nothing here changes engine semantics.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// OpKey annotates the dispatched protocol operation.
	OpKey = "op"
	// CacheKey annotates which of the three caches an access hit.
	CacheKey = "cache"
	// HitKey annotates whether a cache access was a hit or a miss.
	HitKey = "hit"
	// DirtyKey annotates whether an evicted slot required a write-back.
	DirtyKey = "dirty"
)

var (
	meter = otel.Meter("snfs")

	opCount       metric.Int64Counter
	opErrorCount  metric.Int64Counter
	cacheAccess   metric.Int64Counter
	cacheEviction metric.Int64Counter
)

func init() {
	opCount, _ = meter.Int64Counter("fs_op_count",
		metric.WithDescription("Number of dispatched filesystem operations."))
	opErrorCount, _ = meter.Int64Counter("fs_op_error_count",
		metric.WithDescription("Number of dispatched filesystem operations that returned an error status."))
	cacheAccess, _ = meter.Int64Counter("cache_access_count",
		metric.WithDescription("Number of cache lookups, labeled by cache and hit/miss."))
	cacheEviction, _ = meter.Int64Counter("cache_eviction_count",
		metric.WithDescription("Number of LRU evictions, labeled by cache and whether the slot was dirty."))
}

// RecordOp increments the per-operation counters. ok is false when the
// operation returned RES_ERR / a non-zero status.
func RecordOp(ctx context.Context, op string, ok bool) {
	opCount.Add(ctx, 1, metric.WithAttributes(attribute.String(OpKey, op)))
	if !ok {
		opErrorCount.Add(ctx, 1, metric.WithAttributes(attribute.String(OpKey, op)))
	}
}

// RecordCacheAccess increments the hit/miss counter for the named cache
// ("block", "inode", or "dir").
func RecordCacheAccess(ctx context.Context, cache string, hit bool) {
	cacheAccess.Add(ctx, 1, metric.WithAttributes(
		attribute.String(CacheKey, cache),
		attribute.Bool(HitKey, hit),
	))
}

// RecordCacheEviction increments the eviction counter for the named cache.
func RecordCacheEviction(ctx context.Context, cache string, dirty bool) {
	cacheEviction.Add(ctx, 1, metric.WithAttributes(
		attribute.String(CacheKey, cache),
		attribute.Bool(DirtyKey, dirty),
	))
}
