// Package sheetbridge ingests shipment rows exported from an external
// spreadsheet. Every row goes through the policy-gated store adapter like
// any other mutation; there is no raw list-replace path.
package sheetbridge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cargo-portal/logger"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/shipmentstore"
	"cargo-portal/types"
)

// Row is one parsed spreadsheet line.
type Row struct {
	BookingRef       string
	ClientName       string
	OperatorName     string
	Origin           string
	Destination      string
	PlannedDeparture *time.Time
	PlannedArrival   *time.Time
	ContainerCount   int
	Status           shipmentModel.Status
	BLNumber         string
	Carrier          string
}

// Result summarizes one import run.
type Result struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Importer replays spreadsheet rows through the store adapter.
type Importer struct {
	store shipmentstore.Store
}

func NewImporter(store shipmentstore.Store) *Importer {
	return &Importer{store: store}
}

// expected CSV header, in order
var header = []string{
	"booking_ref", "client_name", "operator_name", "origin", "destination",
	"planned_departure", "planned_arrival", "container_count", "status",
	"bl_number", "carrier",
}

// ParseCSV reads spreadsheet rows from r. The first line must be the
// expected header.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(head) != len(header) {
		return nil, fmt.Errorf("unexpected CSV header, want %d columns got %d", len(header), len(head))
	}
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(head[i])) != col {
			return nil, fmt.Errorf("unexpected CSV column %d: want %q got %q", i, col, head[i])
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (Row, error) {
	row := Row{
		BookingRef:   strings.TrimSpace(record[0]),
		ClientName:   strings.TrimSpace(record[1]),
		OperatorName: strings.TrimSpace(record[2]),
		Origin:       strings.TrimSpace(record[3]),
		Destination:  strings.TrimSpace(record[4]),
		BLNumber:     strings.TrimSpace(record[9]),
		Carrier:      strings.TrimSpace(record[10]),
	}
	if row.BookingRef == "" {
		return Row{}, fmt.Errorf("booking_ref is required")
	}

	for _, f := range []struct {
		value  string
		target **time.Time
		name   string
	}{
		{record[5], &row.PlannedDeparture, "planned_departure"},
		{record[6], &row.PlannedArrival, "planned_arrival"},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Row{}, fmt.Errorf("invalid %s %q", f.name, v)
		}
		*f.target = &t
	}

	if v := strings.TrimSpace(record[7]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Row{}, fmt.Errorf("invalid container_count %q", v)
		}
		row.ContainerCount = n
	}

	if v := strings.TrimSpace(record[8]); v != "" {
		status := shipmentModel.Status(strings.ToLower(v))
		if !status.IsValid() {
			return Row{}, fmt.Errorf("invalid status %q", v)
		}
		row.Status = status
	}

	return row, nil
}

// Import replays rows as store mutations issued by actor. Rows matching an
// existing booking reference become patches; the rest become creates. A row
// the policy rejects is counted and reported, never silently applied.
func (im *Importer) Import(ctx context.Context, actor *identity.Identity, rows []Row) Result {
	var res Result

	existing := im.byBookingRef(ctx, actor)

	for _, row := range rows {
		if current, ok := existing[row.BookingRef]; ok {
			if err := im.applyRow(ctx, actor, current, row); err != nil {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", row.BookingRef, types.UserMessage(err)))
				continue
			}
			res.Updated++
			continue
		}

		draft := shipmentModel.Draft{
			ClientName:       row.ClientName,
			OperatorName:     row.OperatorName,
			Origin:           row.Origin,
			Destination:      row.Destination,
			PlannedDeparture: row.PlannedDeparture,
			PlannedArrival:   row.PlannedArrival,
			ContainerCount:   row.ContainerCount,
			Status:           row.Status,
			BLNumber:         row.BLNumber,
			Carrier:          row.Carrier,
			BookingRef:       row.BookingRef,
		}
		if _, err := im.store.Create(ctx, actor, draft); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", row.BookingRef, types.UserMessage(err)))
			continue
		}
		res.Created++
	}

	return res
}

func (im *Importer) applyRow(ctx context.Context, actor *identity.Identity, current *shipmentModel.Shipment, row Row) error {
	patch := shipmentModel.Patch{}
	if row.ClientName != "" && row.ClientName != current.ClientName {
		patch.ClientName = &row.ClientName
	}
	if row.OperatorName != "" && row.OperatorName != current.OperatorName {
		patch.OperatorName = &row.OperatorName
	}
	if row.Origin != "" && row.Origin != current.Origin {
		patch.Origin = &row.Origin
	}
	if row.Destination != "" && row.Destination != current.Destination {
		patch.Destination = &row.Destination
	}
	if row.PlannedDeparture != nil {
		patch.PlannedDeparture = row.PlannedDeparture
	}
	if row.PlannedArrival != nil {
		patch.PlannedArrival = row.PlannedArrival
	}
	if row.ContainerCount > 0 && row.ContainerCount != current.ContainerCount {
		patch.ContainerCount = &row.ContainerCount
	}
	if row.Status != "" && row.Status != current.Status {
		patch.Status = &row.Status
	}
	if row.BLNumber != "" && row.BLNumber != current.BLNumber {
		patch.BLNumber = &row.BLNumber
	}
	if row.Carrier != "" && row.Carrier != current.Carrier {
		patch.Carrier = &row.Carrier
	}
	if patch.IsEmpty() {
		return nil
	}
	_, err := im.store.Update(ctx, actor, current.ID, patch)
	return err
}

// byBookingRef indexes the actor-visible shipments by booking reference.
func (im *Importer) byBookingRef(ctx context.Context, actor *identity.Identity) map[string]*shipmentModel.Shipment {
	index := make(map[string]*shipmentModel.Shipment)
	records, err := im.store.List(ctx, actor)
	if err != nil {
		logger.Error("sheetbridge: failed to list shipments, treating all rows as new", err)
		return index
	}
	for i := range records {
		if ref := records[i].BookingRef; ref != "" {
			index[ref] = &records[i]
		}
	}
	return index
}
