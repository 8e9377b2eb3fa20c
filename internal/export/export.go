// Package export serializes the in-memory table to a delimited artifact the
// operator can keep when live persistence is unavailable.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Write serializes table as UTF-8 CSV: one header row, ISO-8601 dates.
func Write(w io.Writer, table types.CylinderTable) error {
	return csvcodec.WriteTable(w, table)
}

// WriteFile writes the artifact at path, creating parent directories as
// needed. A .gz suffix selects gzip compression, so cylinders.csv.gz does
// what it says.
func WriteFile(path string, table types.CylinderTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if err := Write(gz, table); err != nil {
			f.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("closing gzip stream: %w", err)
		}
	} else if err := Write(f, table); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
