package manifest

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/portfolio"
)

// Catalog caches one built manifest per company filter
type Catalog struct {
	opts []Option
	log  *zap.Logger

	mu      sync.RWMutex
	dataset *portfolio.Dataset
	built   map[string]*Manifest
}

// NewCatalog creates a catalog over ds
func NewCatalog(ds *portfolio.Dataset, logger *zap.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		opts:    append([]Option{WithLogger(logger)}, opts...),
		log:     logger,
		dataset: ds,
		built:   make(map[string]*Manifest),
	}
}

// Get returns the manifest for companyID, building it on first use.
// An empty or unknown company yields the flat layout.
func (c *Catalog) Get(companyID string) *Manifest {
	c.mu.RLock()
	ds := c.dataset
	if _, ok := ds.Company(companyID); !ok {
		companyID = ""
	}
	m, ok := c.built[companyID]
	c.mu.RUnlock()
	if ok {
		return m
	}

	var filter *Filter
	if companyID != "" {
		filter = &Filter{CompanyID: companyID}
	}
	m = Build(ds, filter, c.opts...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataset != ds {
		// Reloaded while building; serve the result but do not cache it.
		return m
	}
	if existing, ok := c.built[companyID]; ok {
		return existing
	}
	c.built[companyID] = m
	return m
}

// Dataset returns the dataset manifests are built from
func (c *Catalog) Dataset() *portfolio.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataset
}

// Reload swaps the dataset and drops cached manifests. Sessions already
// holding a manifest keep it.
func (c *Catalog) Reload(ds *portfolio.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataset = ds
	c.built = make(map[string]*Manifest)
	c.log.Info("manifest catalog reloaded", zap.Int("projects", len(ds.Projects)))
}
