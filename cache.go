package letterpress

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/letterpress/export"
	"github.com/eringen/letterpress/newsletter"
)

// ExportCache keeps rendered newsletter documents in memory with a TTL.
// Writers must call Invalidate for every newsletter they touch.
type ExportCache struct {
	mu      sync.RWMutex
	entries map[int64]exportEntry
	ttl     time.Duration
	gw      newsletter.Gateway
	lang    string
	now     func() time.Time
}

type exportEntry struct {
	html    string
	fetched time.Time
}

// NewExportCache creates an ExportCache that renders from gw.
func NewExportCache(gw newsletter.Gateway, ttl time.Duration, lang string) *ExportCache {
	return &ExportCache{
		entries: make(map[int64]exportEntry),
		ttl:     ttl,
		gw:      gw,
		lang:    lang,
		now:     time.Now,
	}
}

func (c *ExportCache) valid(e exportEntry, ok bool) bool {
	return ok && c.now().Sub(e.fetched) < c.ttl
}

// Get returns the rendered document of newsletter id, rendering it if the
// cached copy is missing or stale.
func (c *ExportCache) Get(ctx context.Context, id int64) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	if c.valid(e, ok) {
		c.mu.RUnlock()
		return e.html, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; c.valid(e, ok) {
		return e.html, nil
	}
	html, err := c.render(ctx, id)
	if err != nil {
		return "", err
	}
	c.entries[id] = exportEntry{html: html, fetched: c.now()}
	return html, nil
}

func (c *ExportCache) render(ctx context.Context, id int64) (string, error) {
	ws, err := newsletter.LoadWorkspace(ctx, c.gw, id)
	if err != nil {
		return "", err
	}
	return export.Render(ws.Newsletter, ws.Posts,
		export.WithLang(c.lang),
		export.WithTitle(ws.Newsletter.Title),
	)
}

// Invalidate drops the cached document of newsletter id.
func (c *ExportCache) Invalidate(id int64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *ExportCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[int64]exportEntry)
	c.mu.Unlock()
}
