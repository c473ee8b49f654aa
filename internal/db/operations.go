package db

import (
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// InsertOperation stores a mining operation and assigns its database ID.
func InsertOperation(op *model.Operation) error {
	res, err := db.Exec(`
		INSERT INTO mining_operations
			(work_type, miner_id, start_time, estimated_completion, progress, difficulty, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.WorkType, op.MinerID, op.StartTime.UnixMilli(),
		op.EstimatedCompletion.UnixMilli(), op.Progress, op.Difficulty, op.Status)
	if err != nil {
		return err
	}
	op.ID, err = res.LastInsertId()
	return err
}

// UpdateOperation advances an operation's progress and status.
func UpdateOperation(id int64, progress float64, status string) error {
	_, err := db.Exec(`UPDATE mining_operations SET progress = ?, status = ? WHERE id = ?`,
		progress, status, id)
	return err
}

func scanOperation(row interface{ Scan(...any) error }) (*model.Operation, error) {
	op := &model.Operation{}
	var start, est int64
	err := row.Scan(&op.ID, &op.WorkType, &op.MinerID, &start, &est,
		&op.Progress, &op.Difficulty, &op.Status)
	if err != nil {
		return nil, err
	}
	op.StartTime = time.UnixMilli(start).UTC()
	op.EstimatedCompletion = time.UnixMilli(est).UTC()
	return op, nil
}

// ListActiveOperations returns all operations still running, newest first.
func ListActiveOperations() ([]model.Operation, error) {
	rows, err := db.Query(`
		SELECT id, work_type, miner_id, start_time, estimated_completion, progress, difficulty, status
		FROM mining_operations WHERE status = ? ORDER BY id DESC`, model.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := []model.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, *op)
	}
	return ops, rows.Err()
}

// SumActiveDifficulty totals the difficulty across active operations, the
// basis of the simulated network hashrate.
func SumActiveDifficulty() (int, error) {
	var sum int
	err := db.QueryRow(`
		SELECT COALESCE(SUM(difficulty), 0) FROM mining_operations WHERE status = ?`,
		model.StatusActive).Scan(&sum)
	return sum, err
}
