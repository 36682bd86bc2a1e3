package sketch

import (
	"os"
	"path/filepath"
	"strings"
)

// Sketch holds information about a detected sketch directory.
type Sketch struct {
	Root         string // absolute path to the sketch directory
	DocumentPath string // path to sketch.yaml (may not exist yet)
	HasDocument  bool   // whether sketch.yaml exists
}

// Detect walks up from startDir looking for a sketch.yaml. When none is
// found it falls back to the first directory containing an .ino file, which
// marks a sketch that has no project file yet.
func Detect(startDir string) *Sketch {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil
	}

	var inoCandidate string

	for {
		doc := filepath.Join(dir, FileName)
		if _, err := os.Stat(doc); err == nil {
			return &Sketch{Root: dir, DocumentPath: doc, HasDocument: true}
		}

		if inoCandidate == "" && hasInoFile(dir) {
			inoCandidate = dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}

	if inoCandidate != "" {
		return &Sketch{
			Root:         inoCandidate,
			DocumentPath: filepath.Join(inoCandidate, FileName),
		}
	}
	return nil
}

func hasInoFile(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".ino") {
			return true
		}
	}
	return false
}
