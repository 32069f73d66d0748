package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/paths"
)

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.GetOfferMoveOnPartialCommit() {
		t.Error("move offer should be enabled by default")
	}
	if cfg.GetMoveToFailedList() != AskEachTime {
		t.Errorf("MoveToFailedList = %v, want ask", cfg.GetMoveToFailedList())
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.FilePath() != path {
		t.Errorf("FilePath = %q, want %q", cfg.FilePath(), path)
	}
	if !cfg.GetOfferMoveOnPartialCommit() {
		t.Error("missing file should yield defaults")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.SetFilePath(path)
	cfg.SetOfferMoveOnPartialCommit(false)
	cfg.SetMoveToFailedList(Never)

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"move_to_failed_list_confirmation": "never"`) {
		t.Errorf("unexpected file content:\n%s", data)
	}
	if !strings.Contains(string(data), `"offer_move_on_partial_commit": false`) {
		t.Errorf("false flag must be persisted explicitly:\n%s", data)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.GetOfferMoveOnPartialCommit() {
		t.Error("OfferMoveOnPartialCommit should be false after reload")
	}
	if loaded.GetMoveToFailedList() != Never {
		t.Errorf("MoveToFailedList = %v, want never", loaded.GetMoveToFailedList())
	}
}

func TestLoadFrom_InvalidConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"move_to_failed_list_confirmation":"sometimes"}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("expected ErrInvalidConfirmation, got %v", err)
	}
}

func TestLoad_UsesConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	paths.Reset()
	t.Cleanup(paths.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(home, ".checkin", "config.json"); cfg.FilePath() != want {
		t.Errorf("FilePath = %q, want %q", cfg.FilePath(), want)
	}
}

func TestSave_NoPath(t *testing.T) {
	if err := Default().Save(); err == nil {
		t.Error("Save without a file path should fail")
	}
}

func TestConfirmation_Parse(t *testing.T) {
	tests := []struct {
		in      string
		want    Confirmation
		wantErr bool
	}{
		{"ask", AskEachTime, false},
		{"", AskEachTime, false},
		{"silently", AlwaysSilently, false},
		{"never", Never, false},
		{"always", AskEachTime, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfirmation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmation_MarshalInvalid(t *testing.T) {
	if _, err := Confirmation(7).MarshalJSON(); err == nil {
		t.Error("marshalling an unknown value should fail")
	}
	if Confirmation(7).String() != "unknown" {
		t.Error("unknown value should stringify as unknown")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.SetFilePath(path)
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 4)
	w, err := Watch(context.Background(), cfg, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	content := `{"offer_move_on_partial_commit": false, "move_to_failed_list_confirmation": "silently"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-changed:
			if cfg.GetMoveToFailedList() == AlwaysSilently && !cfg.GetOfferMoveOnPartialCommit() {
				return
			}
		case <-deadline:
			t.Fatalf("config not reloaded: offer=%v move=%v",
				cfg.GetOfferMoveOnPartialCommit(), cfg.GetMoveToFailedList())
		}
	}
}

func TestWatch_IgnoresInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := Default()
	cfg.SetFilePath(path)

	w, err := Watch(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if cfg.GetMoveToFailedList() != AskEachTime || !cfg.GetOfferMoveOnPartialCommit() {
		t.Error("invalid file should leave previous values in place")
	}
}

func TestWatch_ContextCancelReleasesWatcher(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.SetFilePath(filepath.Join(dir, "config.json"))

	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cancel()

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not exit after cancel")
	}
	if err := w.watcher.Add(dir); err == nil {
		t.Error("watcher should be closed once the context is done")
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close after cancel: %v", err)
	}
}

func TestWatch_NoPath(t *testing.T) {
	if _, err := Watch(context.Background(), Default(), nil); err == nil {
		t.Error("Watch without a file path should fail")
	}
}
