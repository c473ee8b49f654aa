package db

import (
	"database/sql"
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// InsertBlock stores a block and assigns its database ID.
func InsertBlock(b *model.Block) error {
	res, err := db.Exec(`
		INSERT INTO blocks
			(block_index, timestamp, previous_hash, merkle_root, block_hash,
			 difficulty, nonce, total_scientific_value, miner_id,
			 energy_consumed, knowledge_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Index, b.Timestamp.UnixMilli(), b.PreviousHash, b.MerkleRoot,
		b.BlockHash, b.Difficulty, b.Nonce, b.TotalScientificValue,
		b.MinerID, b.EnergyConsumed, b.KnowledgeCreated)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

const blockColumns = `id, block_index, timestamp, previous_hash, merkle_root,
	block_hash, difficulty, nonce, total_scientific_value, miner_id,
	energy_consumed, knowledge_created`

func scanBlock(row interface{ Scan(...any) error }) (*model.Block, error) {
	b := &model.Block{}
	var ts int64
	err := row.Scan(&b.ID, &b.Index, &ts, &b.PreviousHash, &b.MerkleRoot,
		&b.BlockHash, &b.Difficulty, &b.Nonce, &b.TotalScientificValue,
		&b.MinerID, &b.EnergyConsumed, &b.KnowledgeCreated)
	if err != nil {
		return nil, err
	}
	b.Timestamp = time.UnixMilli(ts).UTC()
	return b, nil
}

// GetBlock returns a single block by its database ID.
func GetBlock(id int64) (*model.Block, error) {
	return scanBlock(db.QueryRow(`SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id))
}

// ListBlocks returns the most recent blocks, newest first.
func ListBlocks(limit int) ([]model.Block, error) {
	rows, err := db.Query(`SELECT `+blockColumns+` FROM blocks ORDER BY block_index DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []model.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// LatestBlock returns the chain tip, or nil when the chain is empty.
func LatestBlock() (*model.Block, error) {
	b, err := scanBlock(db.QueryRow(`SELECT ` + blockColumns + ` FROM blocks ORDER BY block_index DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// CountBlocksSince returns how many blocks were mined at or after t.
func CountBlocksSince(t time.Time) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM blocks WHERE timestamp >= ?`, t.UnixMilli()).Scan(&n)
	return n, err
}

// SumEnergyRecentBlocks sums energy consumption across the n newest blocks.
func SumEnergyRecentBlocks(n int) (float64, error) {
	var sum sql.NullFloat64
	err := db.QueryRow(`
		SELECT SUM(energy_consumed) FROM (
			SELECT energy_consumed FROM blocks ORDER BY block_index DESC LIMIT ?
		)`, n).Scan(&sum)
	return sum.Float64, err
}
