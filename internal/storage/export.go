package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{"id", "name", "description", "completed", "created_at", "due_date", "priority"}

// ExportCSV writes every task, in the default order, to path. The returned
// message reports how many rows were written. A failed write leaves whatever
// was already written in place.
func (s *Store) ExportCSV(path string) (string, error) {
	rows, err := s.selectRows("", DefaultOrder)
	if err != nil {
		return "", fmt.Errorf("read tasks: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := writeCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Exported %d tasks to %s", len(rows), path), nil
}

func writeCSV(w io.Writer, rows []taskRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Description.String,
			strconv.Itoa(r.Completed),
			r.CreatedAt.String,
			r.DueDate.String,
			r.Priority.String,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
