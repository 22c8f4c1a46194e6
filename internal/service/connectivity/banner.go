package connectivity

import (
	"sync"

	"stayauth/internal/domain"

	"go.uber.org/zap"
)

// Status is what the banner renders
type Status struct {
	State    domain.ConnectivityState `json:"state"`
	Advisory Advisory                 `json:"advisory"`
	Message  string                   `json:"message"`
	Visible  bool                     `json:"visible"`
}

// Banner observes connectivity and subsystem reports and keeps the advisory
// current. Dismissal is in-memory only.
type Banner struct {
	monitor *Monitor

	mu        sync.Mutex
	reach     Reachability
	dismissed bool
	logger    *zap.Logger
}

// NewBanner creates a banner subscribed to monitor, starting with everything reachable
func NewBanner(monitor *Monitor, logger *zap.Logger) *Banner {
	b := &Banner{
		monitor: monitor,
		reach:   AllReachable,
		logger:  logger,
	}
	if monitor.State() == domain.Offline {
		b.reach.API, b.reach.WebSocket = false, false
	}
	monitor.Subscribe(b)
	return b
}

// OnConnectivityChange marks api and realtime down when offline and clears
// every report when back online
func (b *Banner) OnConnectivityChange(state domain.ConnectivityState) {
	b.update(func(r *Reachability) {
		if state == domain.Offline {
			r.API, r.WebSocket = false, false
			return
		}
		*r = AllReachable
	})
}

// ReportReachability replaces all three subsystem flags
func (b *Banner) ReportReachability(r Reachability) {
	b.update(func(cur *Reachability) { *cur = r })
}

// ReportAuth records the identity verifier's reachability
func (b *Banner) ReportAuth(reachable bool) {
	b.update(func(r *Reachability) { r.Auth = reachable })
}

// Dismiss hides the current advisory until it changes
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismissed = true
}

// Reachability returns the latest snapshot
func (b *Banner) Reachability() Reachability {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reach
}

// Status returns what should be rendered right now
func (b *Banner) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	advisory := b.reach.Classify()
	return Status{
		State:    b.monitor.State(),
		Advisory: advisory,
		Message:  advisory.Message(),
		Visible:  advisory != AdvisoryNone && !b.dismissed,
	}
}

func (b *Banner) update(apply func(r *Reachability)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := b.reach.Classify()
	apply(&b.reach)
	after := b.reach.Classify()

	if before != after {
		b.dismissed = false
		b.logger.Info("Advisory changed",
			zap.String("from", string(before)),
			zap.String("to", string(after)))
	}
}
