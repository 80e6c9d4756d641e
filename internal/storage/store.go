package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orrery/internal/sim"
)

const (
	KindSnapshot = "snapshot"
	KindTrace    = "trace"

	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
	imageBase    = "frame"
)

var ErrNotSnapshot = errors.New("storage: entry has no image")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Metadata describes one gallery entry.
type Metadata struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	Preset     string    `json:"preset,omitempty"`
	Seed       int64     `json:"seed"`
	Frames     uint64    `json:"frames"`
	Day        int64     `json:"day"`
	Followed   string    `json:"followed,omitempty"`
	Zoom       float64   `json:"zoom"`
	Multiplier float64   `json:"multiplier"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Format     string    `json:"format,omitempty"`
}

// Describe fills the frame-derived fields of m from f.
func Describe(m Metadata, f sim.Frame) Metadata {
	m.Frames = f.Index
	m.Day = f.Day
	m.Zoom = f.View.Zoom
	m.Multiplier = f.Multiplier
	m.Width = f.Width
	m.Height = f.Height
	if f.Followed != nil {
		m.Followed = f.Followed.Name
	}
	return m
}

// SaveSnapshot stores an encoded image with its metadata. format is the file
// extension without the dot.
func (s *Store) SaveSnapshot(meta Metadata, format string, image []byte) (string, error) {
	meta.Kind = KindSnapshot
	meta.Format = format
	dir, err := s.create(&meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, imageBase+"."+format), image, 0644); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveTrace stores per-frame rows as CSV with their metadata.
func (s *Store) SaveTrace(meta Metadata, rows []TraceRow) (string, error) {
	meta.Kind = KindTrace
	dir, err := s.create(&meta)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, traceFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) create(meta *Metadata) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Kind, now.UnixNano())
	meta.Timestamp = now
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return dir, nil
}

// List returns every entry, oldest first. A missing store is empty.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	out := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("metadata %s: %w", id, err)
	}
	return &meta, nil
}

// ImagePath returns the stored image of a snapshot entry.
func (s *Store) ImagePath(id string) (string, error) {
	meta, err := s.Load(id)
	if err != nil {
		return "", err
	}
	if meta.Kind != KindSnapshot {
		return "", fmt.Errorf("%w: %s", ErrNotSnapshot, id)
	}
	return filepath.Join(s.baseDir, id, imageBase+"."+meta.Format), nil
}

func (s *Store) LoadTrace(id string) ([]TraceRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TraceRow{}, nil
	}

	rows := make([]TraceRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", id, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TraceRow is one frame of a headless run.
type TraceRow struct {
	Frame      uint64
	Day        int64
	Zoom       float64
	Multiplier float64
	Paused     bool
	Followed   string
	OffsetX    float64
	OffsetY    float64
	Streak     bool
}

var traceHeader = []string{"frame", "day", "zoom", "multiplier", "paused", "followed", "offset_x", "offset_y", "streak"}

// RowOf extracts a trace row from a frame.
func RowOf(f sim.Frame) TraceRow {
	r := TraceRow{
		Frame:      f.Index,
		Day:        f.Day,
		Zoom:       f.View.Zoom,
		Multiplier: f.Multiplier,
		Paused:     f.Paused,
		OffsetX:    f.View.Offset.X,
		OffsetY:    f.View.Offset.Y,
		Streak:     f.Streak.Active,
	}
	if f.Followed != nil {
		r.Followed = f.Followed.Name
	}
	return r
}

func (r TraceRow) record() []string {
	return []string{
		strconv.FormatUint(r.Frame, 10),
		strconv.FormatInt(r.Day, 10),
		strconv.FormatFloat(r.Zoom, 'f', 6, 64),
		strconv.FormatFloat(r.Multiplier, 'f', 6, 64),
		strconv.FormatBool(r.Paused),
		r.Followed,
		strconv.FormatFloat(r.OffsetX, 'f', 6, 64),
		strconv.FormatFloat(r.OffsetY, 'f', 6, 64),
		strconv.FormatBool(r.Streak),
	}
}

func parseRow(rec []string) (TraceRow, error) {
	var (
		r   TraceRow
		err error
	)
	if r.Frame, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return r, err
	}
	if r.Day, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
		return r, err
	}
	if r.Zoom, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return r, err
	}
	if r.Multiplier, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return r, err
	}
	if r.Paused, err = strconv.ParseBool(rec[4]); err != nil {
		return r, err
	}
	r.Followed = rec[5]
	if r.OffsetX, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return r, err
	}
	if r.OffsetY, err = strconv.ParseFloat(rec[7], 64); err != nil {
		return r, err
	}
	if r.Streak, err = strconv.ParseBool(rec[8]); err != nil {
		return r, err
	}
	return r, nil
}
