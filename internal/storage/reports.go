package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lucahenggart/sportbox-backend/internal/models"
)

// ErrMalformedLog is returned when a report log cannot be parsed. Admin
// listing degrades to an explicit error instead of propagating the parse
// fault.
var ErrMalformedLog = errors.New("malformed report log")

// Column orders are the on-disk contract and must not change.
var (
	defectColumns = []string{"timestamp", "name", "kontakt", "datum", "art", "material", "anzahl", "beschreibung", "user"}
	wishColumns   = []string{"timestamp", "name", "klasse", "wunsch", "begruendung", "user"}
)

// ReportLog owns the two append-only CSV logs. Records are never edited or
// deleted. Each append is a single O_APPEND write, serialized by a mutex,
// so concurrent writers never interleave partial records.
type ReportLog struct {
	defectsPath string
	wishesPath  string
	mu          sync.Mutex
	log         zerolog.Logger
}

func NewReportLog(defectsPath, wishesPath string, log zerolog.Logger) *ReportLog {
	return &ReportLog{
		defectsPath: defectsPath,
		wishesPath:  wishesPath,
		log:         log.With().Str("store", "reports").Logger(),
	}
}

// AppendDefect appends one defect/loss record, writing the header row first
// if the log does not exist yet.
func (l *ReportLog) AppendDefect(r models.DefectReport) error {
	row := []string{r.Timestamp, r.Name, r.Kontakt, r.Datum, r.Art, r.Material, strconv.Itoa(r.Anzahl), r.Beschreibung, r.User}
	return l.appendRow(l.defectsPath, defectColumns, row)
}

// AppendWish appends one material wish record.
func (l *ReportLog) AppendWish(r models.WishReport) error {
	row := []string{r.Timestamp, r.Name, r.Klasse, r.Wunsch, r.Begruendung, r.User}
	return l.appendRow(l.wishesPath, wishColumns, row)
}

func (l *ReportLog) appendRow(path string, header, row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	// Build the full payload first so the file sees exactly one write.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if fi.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}
	return nil
}

// ListDefects returns all defect/loss records in insertion order. A missing
// log yields an empty slice; an unparsable one yields ErrMalformedLog.
func (l *ReportLog) ListDefects() ([]models.DefectReport, error) {
	rows, err := l.readRows(l.defectsPath, len(defectColumns))
	if err != nil {
		return nil, err
	}

	records := make([]models.DefectReport, 0, len(rows))
	for _, row := range rows {
		anzahl, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, fmt.Errorf("%w: bad anzahl %q", ErrMalformedLog, row[6])
		}
		records = append(records, models.DefectReport{
			Timestamp:    row[0],
			Name:         row[1],
			Kontakt:      row[2],
			Datum:        row[3],
			Art:          row[4],
			Material:     row[5],
			Anzahl:       anzahl,
			Beschreibung: row[7],
			User:         row[8],
		})
	}
	return records, nil
}

// ListWishes returns all wish records in insertion order.
func (l *ReportLog) ListWishes() ([]models.WishReport, error) {
	rows, err := l.readRows(l.wishesPath, len(wishColumns))
	if err != nil {
		return nil, err
	}

	records := make([]models.WishReport, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.WishReport{
			Timestamp:   row[0],
			Name:        row[1],
			Klasse:      row[2],
			Wunsch:      row[3],
			Begruendung: row[4],
			User:        row[5],
		})
	}
	return records, nil
}

// readRows reads all data rows of a log, skipping the header. Rows with the
// wrong field count make the whole log malformed; the CSV reader reports
// them before we ever see the row.
func (l *ReportLog) readRows(path string, fields int) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	var rows [][]string
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Error().Err(err).Str("path", path).Msg("report log is unreadable")
			return nil, fmt.Errorf("%w: %v", ErrMalformedLog, err)
		}
		if first {
			first = false
			continue // header
		}
		rows = append(rows, row)
	}
	return rows, nil
}
