package reporting

import (
	"fmt"
	"os"
)

// ReadFile opens path, reads it to end and releases the handle before
// returning, per the resource model's scoped-acquisition contract for the
// input configuration and netlist files.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Artifact is one named output file a pipeline run produces: the expanded
// netlist, the ATPG reference, or the ATPG implementation.
type Artifact struct {
	Path    string
	Content string
}

// WriteArtifacts writes each artifact to its path, opening and releasing
// every file handle independently so a failure partway through never
// leaves an earlier file open.
func WriteArtifacts(logger *Logger, artifacts ...Artifact) error {
	for _, a := range artifacts {
		if err := writeOne(a); err != nil {
			return err
		}
		if logger != nil {
			logger.Info("wrote artifact", "path", a.Path, "bytes", len(a.Content))
		}
	}
	return nil
}

func writeOne(a Artifact) (err error) {
	f, err := os.Create(a.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", a.Path, cerr)
		}
	}()

	if _, werr := f.WriteString(a.Content); werr != nil {
		return fmt.Errorf("write %s: %w", a.Path, werr)
	}
	return nil
}
