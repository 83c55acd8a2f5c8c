package variables

import (
	"os"
	"sync"
	"time"

	"github.com/anthropics/kodex/internal/atomicfile"
)

// Contexts caches the {source}_context.json files written by the IPC
// ingress (§4.K) and read here by the resolver and its watcher. The ingress
// owns writing; this type only reads and caches.
type Contexts struct {
	mu   sync.RWMutex
	dir  string
	data map[Source]sourceContext
}

// NewContexts loads whichever of the known sources' files currently exist.
func NewContexts(dir string) *Contexts {
	c := &Contexts{dir: dir, data: make(map[Source]sourceContext)}
	for _, src := range KnownSources {
		c.Reload(src)
	}
	return c
}

func (c *Contexts) pathFor(src Source) string {
	return c.dir + string(os.PathSeparator) + string(src) + "_context.json"
}

// Reload re-reads one source's context file. If the file doesn't exist, the
// cached entry (if any) is cleared, matching the "deletion clears cache"
// invariant from §4.B.
func (c *Contexts) Reload(src Source) error {
	path := c.pathFor(src)
	raw := make(map[string]interface{})
	if err := atomicfile.ReadJSON(path, &raw); err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			delete(c.data, src)
			c.mu.Unlock()
			return nil
		}
		return err
	}

	updatedAt := time.Time{}
	if ts, ok := raw["_updated_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			updatedAt = parsed
		}
	}
	fields := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		fields[k] = v
	}

	c.mu.Lock()
	c.data[src] = sourceContext{fields: fields, updatedAt: updatedAt}
	c.mu.Unlock()
	return nil
}

// Get looks up name in a specific source's context.
func (c *Contexts) Get(src Source, name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctx, ok := c.data[src]
	if !ok {
		return nil, false
	}
	v, ok := ctx.fields[name]
	return v, ok
}

// MostRecent returns the source with the latest _updated_at, or ("", false)
// if no context has been loaded yet.
func (c *Contexts) MostRecent() (Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var best Source
	var bestTime time.Time
	found := false
	for src, ctx := range c.data {
		if !found || ctx.updatedAt.After(bestTime) {
			best, bestTime, found = src, ctx.updatedAt, true
		}
	}
	return best, found
}
