package db

import (
	"database/sql"
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// InsertMetrics stores one network metrics sample.
func InsertMetrics(m model.NetworkMetrics) error {
	_, err := db.Exec(`
		INSERT INTO network_metrics
			(timestamp, active_miners, blocks_per_hour, energy_efficiency,
			 scientific_value, average_block_time, network_hashrate,
			 total_knowledge_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Timestamp.UnixMilli(), m.ActiveMiners, m.BlocksPerHour,
		m.EnergyEfficiency, m.ScientificValue, m.AverageBlockTime,
		m.NetworkHashrate, m.TotalKnowledgeCreated)
	return err
}

// LatestMetrics returns the newest stored sample, or nil when none exists.
func LatestMetrics() (*model.NetworkMetrics, error) {
	m := &model.NetworkMetrics{}
	var ts int64
	err := db.QueryRow(`
		SELECT timestamp, active_miners, blocks_per_hour, energy_efficiency,
			scientific_value, average_block_time, network_hashrate,
			total_knowledge_created
		FROM network_metrics ORDER BY id DESC LIMIT 1`).Scan(
		&ts, &m.ActiveMiners, &m.BlocksPerHour, &m.EnergyEfficiency,
		&m.ScientificValue, &m.AverageBlockTime, &m.NetworkHashrate,
		&m.TotalKnowledgeCreated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Timestamp = time.UnixMilli(ts).UTC()
	return m, nil
}
