package perftop

import (
	"context"
	"sync"
)

// Cache wraps a Data and fetches units once for the life of the dashboard.
type Cache struct {
	Data
	mu    sync.Mutex
	units map[string]string
}

func NewCache(data Data) *Cache {
	return &Cache{Data: data}
}

func (c *Cache) Units(ctx context.Context) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.units == nil {
		c.units = c.Data.Units(ctx)
		if c.units == nil {
			c.units = map[string]string{}
		}
	}
	return c.units
}
