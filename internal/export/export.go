// Package export renders chain history to CSV or JSON for offline
// analysis. Output is deterministic for a given input so exports can be
// diffed between runs.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// Blocks writes the given blocks to w in the requested format.
func Blocks(w io.Writer, format Format, blocks []model.Block) error {
	switch format {
	case FormatCSV:
		return blocksCSV(w, blocks)
	case FormatJSON:
		return writeJSON(w, blocks)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Discoveries writes the given discoveries to w in the requested format.
func Discoveries(w io.Writer, format Format, discoveries []model.Discovery) error {
	switch format {
	case FormatCSV:
		return discoveriesCSV(w, discoveries)
	case FormatJSON:
		return writeJSON(w, discoveries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func blocksCSV(w io.Writer, blocks []model.Block) error {
	cw := csv.NewWriter(w)
	header := []string{
		"index", "timestamp", "previousHash", "merkleRoot", "blockHash",
		"difficulty", "nonce", "totalScientificValue", "minerId",
		"energyConsumed", "knowledgeCreated",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, b := range blocks {
		record := []string{
			strconv.FormatInt(b.Index, 10),
			b.Timestamp.UTC().Format(time.RFC3339),
			b.PreviousHash,
			b.MerkleRoot,
			b.BlockHash,
			strconv.Itoa(b.Difficulty),
			strconv.FormatInt(b.Nonce, 10),
			strconv.FormatFloat(b.TotalScientificValue, 'f', -1, 64),
			b.MinerID,
			strconv.FormatFloat(b.EnergyConsumed, 'f', -1, 64),
			strconv.Itoa(b.KnowledgeCreated),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func discoveriesCSV(w io.Writer, discoveries []model.Discovery) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "workType", "difficulty", "scientificValue", "timestamp", "workerId",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range discoveries {
		record := []string{
			strconv.FormatInt(d.ID, 10),
			d.WorkType,
			strconv.Itoa(d.Difficulty),
			strconv.FormatFloat(d.ScientificValue, 'f', -1, 64),
			d.Timestamp.UTC().Format(time.RFC3339),
			d.WorkerID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
