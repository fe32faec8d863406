package poller

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arloliu/go-rkc/controller"
)

// Entry is one history record: the controller status at one poll instant.
// Nil fields were unavailable when the record was written.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Measured  *float64  `json:"current_temperature"`
	Setpoint  *float64  `json:"target_temperature"`
	Output    *float64  `json:"output_value"`
}

// HistoryLog appends poll results to a size-rotated CSV file and reads them
// back for the history endpoint.
//
// Records have four positional columns:
// timestamp (RFC 3339), measured value, setpoint, output. Values the
// controller has not reported yet are written as empty fields.
type HistoryLog struct {
	mu   sync.Mutex
	out  *lumberjack.Logger
	path string
}

// NewHistoryLog creates a history log writing to path. maxSizeMB bounds
// each file, maxBackups the number of rotated files kept.
func NewHistoryLog(path string, maxSizeMB, maxBackups int) *HistoryLog {
	return &HistoryLog{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			LocalTime:  true,
		},
		path: path,
	}
}

// Append writes one record for the given status.
func (h *HistoryLog) Append(st controller.Status) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := csv.NewWriter(h.out)
	record := []string{
		st.At.Format(time.RFC3339),
		formatField(st.Measured),
		formatField(st.Setpoint),
		formatField(st.Output),
	}

	if err := w.Write(record); err != nil {
		return fmt.Errorf("poller: write history record: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("poller: flush history record: %w", err)
	}

	return nil
}

// Tail returns the last n entries of the current history file, oldest
// first. n <= 0 returns every entry. Rotated-out files are not consulted.
func (h *HistoryLog) Tail(n int) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}

		return nil, fmt.Errorf("poller: open history file: %w", err)
	}
	defer f.Close()

	// Rotation can tear a record mid-write; a short row must not poison
	// the whole read.
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("poller: read history file: %w", rerr)
		}
		if len(rec) != 4 {
			continue
		}

		records = append(records, rec)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		ts, terr := time.Parse(time.RFC3339, rec[0])
		if terr != nil {
			continue // skip lines torn by rotation
		}

		entries = append(entries, Entry{
			Timestamp: ts,
			Measured:  parseField(rec[1]),
			Setpoint:  parseField(rec[2]),
			Output:    parseField(rec[3]),
		})
	}

	return entries, nil
}

// Close closes the underlying rotated file.
func (h *HistoryLog) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.out.Close()
}

func formatField(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func parseField(s string) *float64 {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &v
}
