// Package teamcache keeps recently listed team members in memory.
package teamcache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"majaz-portal/internal/domain"
)

type Config struct {
	TTL  time.Duration `env:"TEAM_CACHE_TTL" env-default:"5m"`
	Size int           `env:"TEAM_CACHE_SIZE" env-default:"16"`
}

type Lister interface {
	ListTeamMembers(ctx context.Context, role domain.Role) ([]domain.TeamMember, error)
}

type entry struct {
	members   []domain.TeamMember
	fetchedAt time.Time
}

type Cache struct {
	next   Lister
	lru    *lru.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(next Lister, config *Config, logger *zap.Logger) (*Cache, error) {
	c, err := lru.New(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create team cache: %w", err)
	}

	return &Cache{
		next:   next,
		lru:    c,
		ttl:    config.TTL,
		logger: logger,
		now:    time.Now,
	}, nil
}

// ListTeamMembers serves from memory until the entry for role is older than the TTL.
func (c *Cache) ListTeamMembers(ctx context.Context, role domain.Role) ([]domain.TeamMember, error) {
	if v, ok := c.lru.Get(role); ok {
		e := v.(entry)
		if c.now().Sub(e.fetchedAt) < c.ttl {
			return e.members, nil
		}
		c.lru.Remove(role)
	}

	members, err := c.next.ListTeamMembers(ctx, role)
	if err != nil {
		return nil, err
	}

	c.lru.Add(role, entry{members: members, fetchedAt: c.now()})
	c.logger.Debug("team cache refreshed", zap.String("role", string(role)), zap.Int("count", len(members)))
	return members, nil
}
