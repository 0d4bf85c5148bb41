package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"pingboard/internal/models"
)

// ExecEngine probes by running the system ping binary. It needs no special
// privileges, at the cost of a process spawn per burst.
type ExecEngine struct {
	count int
}

// NewExecEngine creates an exec probe engine sending count echoes per burst.
func NewExecEngine(count int) *ExecEngine {
	return &ExecEngine{count: count}
}

var (
	// Linux: rtt min/avg/max/mdev = 4.242/4.512/4.832/0.213 ms
	// macOS: round-trip min/avg/max/stddev = 44.347/45.160/46.184/0.750 ms
	rttSummaryRegex = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max(?:/(?:mdev|stddev))? = ([0-9.]+)/([0-9.]+)/([0-9.]+)(?:/([0-9.]+))? ms`)

	// Windows: Minimum = 15ms, Maximum = 18ms, Average = 16ms
	windowsSummaryRegex = regexp.MustCompile(`Minimum = ([0-9]+)ms, Maximum = ([0-9]+)ms, Average = ([0-9]+)ms`)

	packetLossRegex = regexp.MustCompile(`([0-9.]+)% (?:packet )?loss`)
	replyTimeRegex  = regexp.MustCompile(`time=([0-9.]+)\s*ms`)
)

// rttSummary holds the aggregate line printed after a burst. mdev is nil
// when the platform does not report a deviation.
type rttSummary struct {
	min, avg, max float64
	mdev          *float64
}

// Probe runs the platform ping command and parses its output. A burst where
// every packet is lost returns an unreachable sample and a nil error; only
// a failure to run the binary at all is an error.
func (e *ExecEngine) Probe(ctx context.Context, target string, timeout time.Duration) (models.Sample, error) {
	sample := models.Sample{Timestamp: time.Now(), PacketLoss: 100}

	output, err := runPing(ctx, target, e.count, timeout)
	if ctx.Err() != nil {
		return sample, ctx.Err()
	}
	if err != nil {
		// A non-zero exit means lost packets or an unknown host, both of
		// which the output describes. Anything else is a broken invocation.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return sample, fmt.Errorf("running ping for %s failed: %w", target, err)
		}
	}

	if loss, ok := parsePacketLoss(output); ok {
		sample.PacketLoss = loss
	}

	if summary, ok := parseRTTSummary(output); ok {
		sample.Reachable = true
		sample.LatencyMin = models.Float64(summary.min)
		sample.LatencyAvg = models.Float64(summary.avg)
		sample.LatencyMax = models.Float64(summary.max)
		sample.Jitter = summary.mdev
		return sample, nil
	}

	// Some pings print per-reply lines but no summary when interrupted.
	if rtt, ok := parseReplyTime(output); ok {
		sample.Reachable = true
		sample.LatencyMin = models.Float64(rtt)
		sample.LatencyAvg = models.Float64(rtt)
		sample.LatencyMax = models.Float64(rtt)
	}
	return sample, nil
}

func runPing(ctx context.Context, target string, count int, timeout time.Duration) (string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		ms := strconv.Itoa(int(timeout.Milliseconds()))
		cmd = exec.CommandContext(ctx, "ping", "-n", strconv.Itoa(count), "-w", ms, target)
	} else {
		secs := int(timeout.Seconds())
		if secs < 1 {
			secs = 1
		}
		cmd = exec.CommandContext(ctx, "ping", "-c", strconv.Itoa(count), "-W", strconv.Itoa(secs), target)
	}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// parseRTTSummary extracts the min/avg/max aggregate line.
func parseRTTSummary(output string) (rttSummary, bool) {
	if matches := rttSummaryRegex.FindStringSubmatch(output); matches != nil {
		var s rttSummary
		s.min, _ = strconv.ParseFloat(matches[1], 64)
		s.avg, _ = strconv.ParseFloat(matches[2], 64)
		s.max, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			mdev, _ := strconv.ParseFloat(matches[4], 64)
			s.mdev = models.Float64(mdev)
		}
		return s, true
	}
	if matches := windowsSummaryRegex.FindStringSubmatch(output); matches != nil {
		var s rttSummary
		s.min, _ = strconv.ParseFloat(matches[1], 64)
		s.max, _ = strconv.ParseFloat(matches[2], 64)
		s.avg, _ = strconv.ParseFloat(matches[3], 64)
		return s, true
	}
	return rttSummary{}, false
}

// parsePacketLoss extracts the loss percentage from the burst summary.
func parsePacketLoss(output string) (float64, bool) {
	matches := packetLossRegex.FindStringSubmatch(output)
	if matches == nil {
		return 0, false
	}
	loss, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	return loss, true
}

// parseReplyTime extracts the first per-reply time= value.
func parseReplyTime(output string) (float64, bool) {
	matches := replyTimeRegex.FindStringSubmatch(output)
	if matches == nil {
		return 0, false
	}
	rtt, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	return rtt, true
}
