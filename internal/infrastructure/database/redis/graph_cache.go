package redis

import (
	"context"
	"time"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	moltypes "github.com/turtacn/kcfgraph/pkg/types/molecule"
)

// graphKeyPrefix namespaces parsed graphs inside the cache prefix.
const graphKeyPrefix = "graph:"

// GraphCache stores parsed molecular graphs keyed by record digest.
type GraphCache struct {
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewGraphCache(cache Cache, ttl time.Duration, log logging.Logger) *GraphCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GraphCache{cache: cache, ttl: ttl, logger: log.Named("graph_cache")}
}

// Get returns the cached graph for key. A miss is reported as (nil, false, nil).
func (g *GraphCache) Get(ctx context.Context, key string) (*moltypes.GraphDTO, bool, error) {
	var dto moltypes.GraphDTO
	err := g.cache.Get(ctx, graphKeyPrefix+key, &dto)
	if err == ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &dto, true, nil
}

func (g *GraphCache) Put(ctx context.Context, key string, dto *moltypes.GraphDTO) error {
	if err := g.cache.Set(ctx, graphKeyPrefix+key, dto, g.ttl); err != nil {
		return err
	}
	g.logger.Debug("cached graph", logging.String("key", key), logging.Int("atoms", dto.NumAtoms))
	return nil
}

// Purge drops every cached graph and returns how many were removed.
func (g *GraphCache) Purge(ctx context.Context) (int64, error) {
	return g.cache.DeleteByPrefix(ctx, graphKeyPrefix)
}

func (g *GraphCache) Ping(ctx context.Context) error {
	return g.cache.Ping(ctx)
}

//Personal.AI order the ending
