package httpx

import (
	"sync"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// AnalysisRegistry maps applications to their analysis functions. The
// analyses themselves are external collaborators wired in at bootstrap; the
// API layer only dispatches to them.
type AnalysisRegistry struct {
	mu  sync.RWMutex
	fns map[model.Application]core.AnalysisFunc
}

// NewAnalysisRegistry creates an empty registry.
func NewAnalysisRegistry() *AnalysisRegistry {
	return &AnalysisRegistry{fns: make(map[model.Application]core.AnalysisFunc)}
}

// Register binds an analysis function to an application, replacing any
// previous binding.
func (r *AnalysisRegistry) Register(app model.Application, fn core.AnalysisFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[app] = fn
}

// ForApplication returns the analysis function for an application, or nil.
func (r *AnalysisRegistry) ForApplication(app model.Application) core.AnalysisFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fns[app]
}
