// Package monitor logs boot reports and secondary-core launches as they are
// published, with a periodic heartbeat.
package monitor

import (
	"context"
	"time"

	"vectorcore-go/bus"
	"vectorcore-go/types"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
)

var (
	topicBootState  = bus.T("boot", bus.One, "state")
	topicCoreLaunch = bus.T("core", bus.One, "launch")
)

const defaultInterval = time.Second

type Service struct {
	// Interval between heartbeat lines; zero means one second.
	Interval time.Duration
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	boots := conn.Subscribe(topicBootState)
	defer conn.Unsubscribe(boots)
	launches := conn.Subscribe(topicCoreLaunch)
	defer conn.Unsubscribe(launches)

	iv := s.Interval
	if iv <= 0 {
		iv = defaultInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Line("monitor", "stopping")
			return
		case <-tick.C:
			logx.Line("monitor", "heartbeat")
		case m := <-boots.Channel():
			if r, ok := m.Payload.(types.BootReport); ok {
				line := []string{"core", conv.Int(r.Core), r.State, "vtor", conv.Addr(r.VTOR)}
				if r.Error != "" {
					line = append(line, "error", r.Error)
				}
				logx.Line("monitor", line...)
			}
		case m := <-launches.Channel():
			if r, ok := m.Payload.(types.CoreLaunch); ok {
				logx.Line("monitor", "core", conv.Int(r.Core), "launched at", conv.Addr(r.VTOR))
			}
		}
	}
}

// Start runs the monitor until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
