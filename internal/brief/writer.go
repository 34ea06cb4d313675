package brief

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer persists briefs under Dir as briefs/brief_YYYYMMDD.md and
// facts/facts_YYYYMMDD.json. Failures are logged and never returned, so a
// report run is not aborted by an unwritable output directory.
type Writer struct {
	Dir    string
	Logger *slog.Logger
}

// Write stores the rendered markdown and facts of b. It returns the paths
// that were written; a path is empty when its write failed.
func (w *Writer) Write(b *Brief, markdown string) (briefPath, factsPath string) {
	date := b.GeneratedAt.UTC().Format("20060102")

	p := filepath.Join(w.Dir, "briefs", fmt.Sprintf("brief_%s.md", date))
	if err := writeFile(p, []byte(markdown)); err != nil {
		w.Logger.Warn("failed to persist brief", "path", p, "error", err)
	} else {
		briefPath = p
	}

	data, err := json.MarshalIndent(BuildFacts(b), "", "  ")
	if err != nil {
		w.Logger.Warn("failed to encode facts", "error", err)
		return briefPath, ""
	}
	p = filepath.Join(w.Dir, "facts", fmt.Sprintf("facts_%s.json", date))
	if err := writeFile(p, data); err != nil {
		w.Logger.Warn("failed to persist facts", "path", p, "error", err)
		return briefPath, ""
	}
	return briefPath, p
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
