// Package adapters holds the site adapter registry and shared adapter
// implementations. Each court source registers a constructor under its
// adapter id; the CLI resolves a selector (one id, or a package prefix
// such as "opinions") into concrete sites at startup.
package adapters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tactipus/courtlistener/internal/scraper"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]func() (scraper.Site, error){}
)

// Register adds a site constructor under an adapter id, e.g.
// "opinions.united_states.federal.ca1". Registering the same id twice is
// a programming error.
func Register(id string, ctor func() (scraper.Site, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("adapters: duplicate registration for %q", id))
	}
	registry[id] = ctor
}

// Resolve turns a selector into sites. An exact id yields one site; a
// prefix selects every id underneath it ("opinions" selects all
// "opinions.*" adapters), in sorted id order so crawl order is stable.
func Resolve(selector string) ([]scraper.Site, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if ctor, ok := registry[selector]; ok {
		site, err := ctor()
		if err != nil {
			return nil, fmt.Errorf("construct adapter %s: %w", selector, err)
		}
		return []scraper.Site{site}, nil
	}

	var ids []string
	prefix := selector + "."
	for id := range registry {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("unknown court or court package %q", selector)
	}
	sort.Strings(ids)

	sites := make([]scraper.Site, 0, len(ids))
	for _, id := range ids {
		site, err := registry[id]()
		if err != nil {
			return nil, fmt.Errorf("construct adapter %s: %w", id, err)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// IDs returns every registered adapter id, sorted.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
