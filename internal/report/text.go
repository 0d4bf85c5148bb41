package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pingboard/internal/config"
)

// minOutageRun is the number of consecutive failures before a run is worth
// listing in the summary
const minOutageRun = 3

func (g *Generator) textSummary(dir string, targets []config.TargetConfig, hours int) error {
	file, err := os.Create(filepath.Join(dir, "summary.txt"))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Pingboard Connectivity Report\n")
	fmt.Fprintf(file, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Period: Last %d hours\n\n", hours)
	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nOVERALL STATISTICS")

	for _, target := range targets {
		stats, err := g.db.StatisticsFor(target.Address, hours)
		if err != nil {
			return fmt.Errorf("loading statistics for %s failed: %w", target.Address, err)
		}

		if target.Name != "" {
			fmt.Fprintf(file, "Target: %s (%s)\n", target.Address, target.Name)
		} else {
			fmt.Fprintf(file, "Target: %s\n", target.Address)
		}
		fmt.Fprintf(file, "  Samples: %d\n", stats.SampleCount)
		fmt.Fprintf(file, "  Uptime: %.2f%%\n", stats.UptimePercent)
		fmt.Fprintf(file, "  Packet Loss: %.2f%%\n", stats.PacketLossAvg)
		if stats.LatencyAvg != nil {
			fmt.Fprintf(file, "  Average RTT: %.2f ms\n", *stats.LatencyAvg)
		}
		if stats.LatencyMin != nil {
			fmt.Fprintf(file, "  Min RTT: %.2f ms\n", *stats.LatencyMin)
		}
		if stats.LatencyMax != nil {
			fmt.Fprintf(file, "  Max RTT: %.2f ms\n", *stats.LatencyMax)
		}
		if stats.JitterAvg != nil {
			fmt.Fprintf(file, "  Average Jitter: %.2f ms\n", *stats.JitterAvg)
		}
		fmt.Fprintf(file, "  Outages: %d\n", stats.OutageCount)
		fmt.Fprintln(file)
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintf(file, "\nOUTAGE PERIODS (%d+ consecutive failures)\n", minOutageRun)

	outageCount := 0
	for _, target := range targets {
		outages, err := g.db.Outages(target.Address, hours)
		if err != nil {
			return fmt.Errorf("loading outages for %s failed: %w", target.Address, err)
		}

		for _, o := range outages {
			if o.FailedSamples < minOutageRun {
				continue
			}

			outageCount++
			fmt.Fprintf(file, "Outage #%d\n", outageCount)
			fmt.Fprintf(file, "  Target: %s\n", o.Target)
			fmt.Fprintf(file, "  Start: %s\n", o.StartTime.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(file, "  End: %s\n", o.EndTime.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(file, "  Duration: %s\n", o.Duration)
			fmt.Fprintf(file, "  Failed Samples: %d\n", o.FailedSamples)
			fmt.Fprintln(file)
		}
	}

	if outageCount == 0 {
		fmt.Fprintln(file, "No significant outages detected.")
	} else {
		fmt.Fprintf(file, "\nTotal Outages: %d\n", outageCount)
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nCharts for each target are available in the accompanying files.")

	return nil
}
