package connectivity

import "go.uber.org/zap"

// Service bundles the monitor with the banner observing it
type Service struct {
	*Monitor
	*Banner
}

// NewService creates a monitor and a banner subscribed to it
func NewService(logger *zap.Logger) *Service {
	monitor := NewMonitor(logger)
	return &Service{
		Monitor: monitor,
		Banner:  NewBanner(monitor, logger),
	}
}
