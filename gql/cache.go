package gql

import "sync"

// IntrospectionCache holds the result of the full schema query. The schema
// never changes while the process runs, so the slot is filled once and only
// emptied by Reset.
type IntrospectionCache struct {
	lock sync.RWMutex
	data any
}

func NewIntrospectionCache() *IntrospectionCache {
	return &IntrospectionCache{}
}

func (c *IntrospectionCache) Get() (any, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.data, c.data != nil
}

func (c *IntrospectionCache) Set(data any) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.data = data
}

func (c *IntrospectionCache) Reset() {
	c.Set(nil)
}
