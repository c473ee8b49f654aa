package db

import (
	"database/sql"
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// InsertDiscovery stores a discovery and assigns its database ID.
func InsertDiscovery(d *model.Discovery) error {
	res, err := db.Exec(`
		INSERT INTO discoveries (work_type, difficulty, scientific_value, timestamp, worker_id)
		VALUES (?, ?, ?, ?, ?)`,
		d.WorkType, d.Difficulty, d.ScientificValue, d.Timestamp.UnixMilli(), d.WorkerID)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func scanDiscovery(row interface{ Scan(...any) error }) (*model.Discovery, error) {
	d := &model.Discovery{}
	var ts int64
	err := row.Scan(&d.ID, &d.WorkType, &d.Difficulty, &d.ScientificValue, &ts, &d.WorkerID)
	if err != nil {
		return nil, err
	}
	d.Timestamp = time.UnixMilli(ts).UTC()
	return d, nil
}

// GetDiscovery returns a single discovery by its database ID.
func GetDiscovery(id int64) (*model.Discovery, error) {
	return scanDiscovery(db.QueryRow(`
		SELECT id, work_type, difficulty, scientific_value, timestamp, worker_id
		FROM discoveries WHERE id = ?`, id))
}

// ListDiscoveries returns the most recent discoveries, newest first.
func ListDiscoveries(limit int) ([]model.Discovery, error) {
	rows, err := db.Query(`
		SELECT id, work_type, difficulty, scientific_value, timestamp, worker_id
		FROM discoveries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discoveries := []model.Discovery{}
	for rows.Next() {
		d, err := scanDiscovery(rows)
		if err != nil {
			return nil, err
		}
		discoveries = append(discoveries, *d)
	}
	return discoveries, rows.Err()
}

// CountDiscoveries returns the total knowledge created so far.
func CountDiscoveries() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM discoveries`).Scan(&n)
	return n, err
}

// SumScientificValueSince sums the value of discoveries made at or after t.
func SumScientificValueSince(t time.Time) (float64, error) {
	var sum sql.NullFloat64
	err := db.QueryRow(`SELECT SUM(scientific_value) FROM discoveries WHERE timestamp >= ?`,
		t.UnixMilli()).Scan(&sum)
	return sum.Float64, err
}
