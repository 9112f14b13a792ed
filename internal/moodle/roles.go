package moodle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Role shortnames the build pipeline resolves on the remote instance.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type roleEntry struct {
	id        int64
	expiresAt time.Time
}

// RoleCache memoizes role-id lookups. Roles are effectively static in
// Moodle, so entries live for the configured TTL; zero TTL means forever.
type RoleCache struct {
	client Client
	ttl    time.Duration

	mu    sync.Mutex
	roles map[string]roleEntry
}

func NewRoleCache(client Client, ttl time.Duration) *RoleCache {
	return &RoleCache{
		client: client,
		ttl:    ttl,
		roles:  make(map[string]roleEntry),
	}
}

func (c *RoleCache) RoleID(ctx context.Context, shortname string) (int64, error) {
	c.mu.Lock()
	entry, ok := c.roles[shortname]
	c.mu.Unlock()

	if ok && (c.ttl == 0 || time.Now().Before(entry.expiresAt)) {
		return entry.id, nil
	}

	role, err := c.client.GetRoleByShortname(ctx, shortname)
	if err != nil {
		return 0, err
	}
	if role == nil {
		return 0, fmt.Errorf("no role with shortname %q", shortname)
	}

	c.mu.Lock()
	c.roles[shortname] = roleEntry{id: role.ID, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return role.ID, nil
}

// Invalidate drops all cached roles.
func (c *RoleCache) Invalidate() {
	c.mu.Lock()
	c.roles = make(map[string]roleEntry)
	c.mu.Unlock()
}
