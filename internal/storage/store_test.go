package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/sim"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	img := []byte("\x89PNG fake")
	id, err := st.SaveSnapshot(Metadata{Seed: 42, Preset: "calm", Day: 365}, "png", img)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Error("expected non-empty id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindSnapshot || meta.Format != "png" {
		t.Errorf("expected png snapshot, got %s/%s", meta.Kind, meta.Format)
	}
	if meta.Seed != 42 || meta.Day != 365 || meta.Preset != "calm" {
		t.Errorf("metadata not preserved: %+v", meta)
	}

	path, err := st.ImagePath(id)
	if err != nil {
		t.Fatalf("image path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !bytes.Equal(data, img) {
		t.Error("stored image differs")
	}
}

func TestTraceSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Seed = 5
	ctx := sim.New(cfg)
	earth := ctx.Registry().Lookup("Earth")
	ctx.Camera().Follow(earth)

	var rows []TraceRow
	for i := 0; i < 3; i++ {
		rows = append(rows, RowOf(ctx.Frame()))
	}

	id, err := st.SaveTrace(Describe(Metadata{Seed: 5}, ctx.Last()), rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := st.LoadTrace(id)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[2].Frame != 3 || got[2].Followed != "Earth" {
		t.Errorf("unexpected last row %+v", got[2])
	}
	if got[0].OffsetX == 0 && got[0].OffsetY == 0 {
		t.Error("expected a non-zero follow offset")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindTrace || meta.Frames != 3 || meta.Followed != "Earth" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if _, err := st.ImagePath(id); !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("expected ErrNotSnapshot, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(filepath.Join(tmpDir, "gallery"))

	entries, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}

	if _, err := st.SaveSnapshot(Metadata{}, "svg", []byte("<svg/>")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.SaveTrace(Metadata{}, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "gallery", "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	entries, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindSnapshot || entries[1].Kind != KindTrace {
		t.Errorf("expected oldest first, got %s then %s", entries[0].Kind, entries[1].Kind)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	id, err := st.SaveTrace(Metadata{}, []TraceRow{{Frame: 1}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	dir := filepath.Join(tmpDir, id)
	for _, name := range []string{"metadata.json", "trace.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}
