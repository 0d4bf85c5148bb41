package monitor

import (
	"log"
	"time"
)

// maintenanceWorker runs periodic maintenance tasks
func (m *Monitor) maintenanceWorker() {
	defer m.wg.Done()

	// Run maintenance every hour
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	// Run immediately on start
	m.performMaintenance()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.performMaintenance()
		}
	}
}

// performMaintenance archives and prunes old samples
func (m *Monitor) performMaintenance() {
	log.Println("Running maintenance tasks...")

	retention := m.config.Retention
	if err := m.db.ArchiveOldData(retention.RawDays, retention.AggregateDays); err != nil {
		log.Printf("Failed to archive old data: %v", err)
	}

	log.Println("Maintenance complete")
}
