package politeness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/portfolio-site/backend/internal/config"
)

// PolitenessManager throttles API clients with one token bucket per client
type PolitenessManager struct {
	config       config.RateLimitConfig
	logger       *logrus.Entry
	clientStates map[string]*ClientState
	running      bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	now          func() time.Time

	statsMu sync.RWMutex
	stats   Statistics
}

// ClientState tracks the request budget of one client
type ClientState struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Statistics holds politeness manager statistics
type Statistics struct {
	AllowedRequests  int64     `json:"allowed_requests"`
	RejectedRequests int64     `json:"rejected_requests"`
	TrackedClients   int       `json:"tracked_clients"`
	StartTime        time.Time `json:"start_time"`
}

// NewPolitenessManager creates a new politeness manager
func NewPolitenessManager(cfg config.RateLimitConfig, logger *logrus.Entry) *PolitenessManager {
	if logger == nil {
		logger = logrus.WithField("component", "politeness_manager")
	}

	return &PolitenessManager{
		config:       cfg,
		logger:       logger,
		clientStates: make(map[string]*ClientState),
		now:          time.Now,
		stats: Statistics{
			StartTime: time.Now(),
		},
	}
}

// Start starts the idle-client cleanup worker
func (pm *PolitenessManager) Start() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.running {
		return fmt.Errorf("politeness manager is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	pm.cancel = cancel
	pm.running = true

	pm.wg.Add(1)
	go pm.cleanupWorker(ctx)

	pm.logger.Info("Politeness manager started")
	return nil
}

// Stop stops the politeness manager
func (pm *PolitenessManager) Stop() error {
	pm.mu.Lock()
	if !pm.running {
		pm.mu.Unlock()
		return fmt.Errorf("politeness manager is not running")
	}
	pm.running = false
	if pm.cancel != nil {
		pm.cancel()
	}
	pm.mu.Unlock()

	// Wait for the worker with timeout
	done := make(chan struct{})
	go func() {
		pm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		pm.logger.Info("Politeness manager stopped")
		return nil
	case <-time.After(5 * time.Second):
		pm.logger.Warn("Politeness manager stop timed out")
		return fmt.Errorf("stop operation timed out")
	}
}

// Allow reports whether client may make a request now and spends one token
// if so. Throttling disabled in config always allows.
func (pm *PolitenessManager) Allow(client string) bool {
	if !pm.config.Enabled {
		return true
	}

	state := pm.getOrCreateClientState(client)
	allowed := state.limiter.AllowN(pm.now(), 1)

	pm.updateStats(func(stats *Statistics) {
		if allowed {
			stats.AllowedRequests++
		} else {
			stats.RejectedRequests++
		}
	})

	if !allowed {
		pm.logger.WithField("client", client).Debug("Request throttled")
	}
	return allowed
}

// GetStatistics returns a snapshot of the current statistics
func (pm *PolitenessManager) GetStatistics() Statistics {
	tracked := pm.GetClientStateCount()

	pm.statsMu.RLock()
	snapshot := pm.stats
	pm.statsMu.RUnlock()

	snapshot.TrackedClients = tracked
	return snapshot
}

// GetClientStateCount returns the number of tracked clients.
// This is primarily intended for monitoring and testing.
func (pm *PolitenessManager) GetClientStateCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return len(pm.clientStates)
}

func (pm *PolitenessManager) getOrCreateClientState(client string) *ClientState {
	now := pm.now()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	state, ok := pm.clientStates[client]
	if !ok {
		state = &ClientState{
			limiter: rate.NewLimiter(rate.Limit(pm.config.RequestsPerSec), pm.config.Burst),
		}
		pm.clientStates[client] = state
	}
	state.lastAccess = now
	return state
}

// cleanupWorker periodically drops idle client states
func (pm *PolitenessManager) cleanupWorker(ctx context.Context) {
	defer pm.wg.Done()

	interval := pm.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.Cleanup()
		}
	}
}

// Cleanup removes client states idle for longer than the configured expiry
func (pm *PolitenessManager) Cleanup() {
	now := pm.now()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	expired := 0
	for client, state := range pm.clientStates {
		if now.Sub(state.lastAccess) > pm.config.ClientExpiry {
			delete(pm.clientStates, client)
			expired++
		}
	}

	if expired > 0 {
		pm.logger.WithField("expired_clients", expired).Debug("Cleanup completed")
	}
}

// updateStats safely updates statistics
func (pm *PolitenessManager) updateStats(updateFn func(*Statistics)) {
	pm.statsMu.Lock()
	defer pm.statsMu.Unlock()
	updateFn(&pm.stats)
}
