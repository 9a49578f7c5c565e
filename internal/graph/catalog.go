package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/graphfeed/graphfeed/internal/models"
)

type graphKey struct {
	db   string
	name string
}

// Catalog maps (db, graph) names to resident graph handles. Registration
// happens at startup; lookups are concurrent.
type Catalog struct {
	mu     sync.RWMutex
	graphs map[graphKey]Graph
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{graphs: make(map[graphKey]Graph)}
}

// Register adds a graph under (db, name), replacing any previous entry.
func (c *Catalog) Register(db, name string, g Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.graphs[graphKey{db: db, name: name}] = g
}

// Get returns the graph registered under (db, name) or ErrGraphUnavailable.
func (c *Catalog) Get(db, name string) (Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.graphs[graphKey{db: db, name: name}]
	if !ok {
		return nil, fmt.Errorf("graph %q in db %q: %w", name, db, models.ErrGraphUnavailable)
	}

	return g, nil
}

// List returns catalog entries sorted by db then name.
func (c *Catalog) List() []models.GraphInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]models.GraphInfo, 0, len(c.graphs))

	for key, g := range c.graphs {
		infos = append(infos, models.GraphInfo{
			DB:                key.db,
			Name:              key.name,
			NodeCount:         g.NodeCount(),
			RelationshipCount: g.RelationshipCount(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DB != infos[j].DB {
			return infos[i].DB < infos[j].DB
		}

		return infos[i].Name < infos[j].Name
	})

	return infos
}
