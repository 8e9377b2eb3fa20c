// Shared helpers for lpgtrack CLI commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/workjay-it/lpgtrack/internal/audit"
	"github.com/workjay-it/lpgtrack/internal/loader"
	"github.com/workjay-it/lpgtrack/internal/mutate"
	"github.com/workjay-it/lpgtrack/internal/store"
	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// depot bundles the opened store and the services built over it for one
// command invocation. The caller must defer Close.
type depot struct {
	cfg    types.Config
	store  types.Store
	loader *loader.Loader
	mut    *mutate.Coordinator
	trail  *audit.Trail
}

// openDepot builds the effective config, opens the configured store and wires
// the loader, audit trail and mutation coordinator over it.
func openDepot(ctx context.Context) (*depot, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	l := loader.New(st, cfg.CacheTTL)
	var trail *audit.Trail
	if cfg.Audit {
		trail = audit.New(cfg.DataDir)
	}

	return &depot{
		cfg:    cfg,
		store:  st,
		loader: l,
		mut:    mutate.New(st, l, trail),
		trail:  trail,
	}, nil
}

func (d *depot) Close() {
	if err := d.store.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close store:", err)
	}
}

// loadTable reads the cylinder table through the loader. An unavailable store
// degrades to an empty table with a warning on stderr; any other failure is
// returned.
func loadTable(ctx context.Context, d *depot) (types.CylinderTable, error) {
	table, err := d.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, types.ErrStoreUnavailable) {
			fmt.Fprintln(os.Stderr, "warning: store unavailable, showing empty table")
			return table, nil
		}
		return nil, err
	}
	return table, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// printRecords renders the table in aligned columns on stdout.
func printRecords(table types.CylinderTable) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CYLINDER\tCAP\tFILL\tSTATUS\tPIN\tCUSTOMER\tNEXT TEST\t")
	for _, rec := range table {
		fmt.Fprintf(w, "%s\t%dkg\t%d%%\t%s\t%s\t%s\t%s\t\n",
			rec.CylinderID,
			rec.CapacityKg,
			rec.FillPercent,
			rec.Status,
			rec.LocationPIN,
			rec.CustomerName,
			testDueCell(rec),
		)
	}
	w.Flush()
}

// printRecord renders one record in a field-per-line detail view.
func printRecord(rec types.CylinderRecord) {
	fmt.Printf("Cylinder:   %s\n", rec.CylinderID)
	fmt.Printf("Capacity:   %dkg\n", rec.CapacityKg)
	fmt.Printf("Fill:       %d%%\n", rec.FillPercent)
	fmt.Printf("Status:     %s\n", rec.Status)
	fmt.Printf("PIN:        %s\n", rec.LocationPIN)
	if rec.CustomerName != "" {
		fmt.Printf("Customer:   %s\n", rec.CustomerName)
	}
	if rec.LastFillDate != nil {
		fmt.Printf("Last fill:  %s\n", csvcodec.FormatDate(rec.LastFillDate))
	}
	if rec.LastTestDate != nil {
		fmt.Printf("Last test:  %s\n", csvcodec.FormatDate(rec.LastTestDate))
	}
	fmt.Printf("Next test:  %s\n", testDueCell(rec))
}

// testDueCell formats the next test date, flagging overdue cylinders.
func testDueCell(rec types.CylinderRecord) string {
	if rec.NextTestDue == nil {
		return "unknown"
	}
	s := csvcodec.FormatDate(rec.NextTestDue)
	if rec.Overdue {
		return s + " OVERDUE"
	}
	return s
}

// reportOutcome prints the mutated record and warns when the change could not
// be written back to the store.
func reportOutcome(verb string, out *mutate.Outcome) error {
	if flagJSON {
		if err := printJSON(out.Record); err != nil {
			return err
		}
	} else {
		fmt.Printf("%s %s\n", verb, out.Record.CylinderID)
	}
	if out.Persistence == mutate.MemoryOnly {
		fmt.Fprintln(os.Stderr, "warning: change kept in memory only; run 'lpgtrack export' to save a copy")
	}
	return nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, returning nil for an empty
// value.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(csvcodec.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return &t, nil
}
