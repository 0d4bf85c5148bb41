package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ping/ping"

	"pingboard/internal/models"
)

// ICMPEngine probes with native ICMP echoes via go-ping.
type ICMPEngine struct {
	count      int
	privileged bool
}

// NewICMPEngine creates an ICMP probe engine sending count echoes per burst.
func NewICMPEngine(count int, privileged bool) *ICMPEngine {
	return &ICMPEngine{count: count, privileged: privileged}
}

// Probe sends a burst of echoes and aggregates the replies into a sample.
// Lost packets are data, not errors: an unreachable target yields a sample
// with Reachable false and a nil error.
func (e *ICMPEngine) Probe(ctx context.Context, target string, timeout time.Duration) (models.Sample, error) {
	sample := models.Sample{Timestamp: time.Now(), PacketLoss: 100}

	pinger, err := ping.NewPinger(target)
	if err != nil {
		return sample, fmt.Errorf("resolving %s failed: %w", target, err)
	}
	pinger.Count = e.count
	pinger.Timeout = timeout
	pinger.Interval = 200 * time.Millisecond
	pinger.SetPrivileged(e.privileged)

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return sample, ctx.Err()
	}
	if err != nil {
		return sample, fmt.Errorf("%w: %v", ErrSocket, err)
	}

	stats := pinger.Statistics()
	sample.PacketLoss = stats.PacketLoss
	if stats.PacketsRecv == 0 {
		return sample, nil
	}

	sample.Reachable = true
	sample.LatencyMin = models.Float64(durationMs(stats.MinRtt))
	sample.LatencyAvg = models.Float64(durationMs(stats.AvgRtt))
	sample.LatencyMax = models.Float64(durationMs(stats.MaxRtt))
	sample.Jitter = models.Float64(durationMs(stats.StdDevRtt))
	return sample, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
