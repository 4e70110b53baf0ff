package pattern

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// FileProvider loads the pattern catalog from a YAML file and
// publishes an atomically-swapped Snapshot on load/Reload, so a call that
// captured a Snapshot at entry keeps observing it across a concurrent
// reload.
type FileProvider struct {
	path     string
	snapshot atomic.Pointer[Snapshot]
}

// NewFileProvider loads path once and returns a ready Provider. If path
// does not exist, the embedded DefaultCatalog is used instead.
func NewFileProvider(path string) (*FileProvider, error) {
	fp := &FileProvider{path: path}
	if err := fp.Reload(); err != nil {
		return nil, err
	}
	return fp, nil
}

// Snapshot returns the currently published catalog.
func (fp *FileProvider) Snapshot() *Snapshot {
	return fp.snapshot.Load()
}

// Reload re-reads the backing file and, on success, atomically publishes
// the newly compiled Snapshot. A failed reload leaves the previously
// published Snapshot intact.
func (fp *FileProvider) Reload() error {
	data, err := os.ReadFile(fp.path)
	if err != nil {
		if os.IsNotExist(err) {
			fp.snapshot.Store(DefaultCatalog())
			return nil
		}
		return fmt.Errorf("pattern.FileProvider.Reload: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return firewall.NewError("pattern.FileProvider.Reload", firewall.ErrPatternLoadError, err)
	}

	snap, err := compile(file)
	if err != nil {
		return firewall.NewError("pattern.FileProvider.Reload", firewall.ErrPatternLoadError, err)
	}

	fp.snapshot.Store(snap)
	return nil
}

// StaticProvider wraps a fixed Snapshot for tests and the embedded default
// catalog fallback; Reload is a no-op.
type StaticProvider struct {
	snap *Snapshot
}

// NewStaticProvider returns a Provider that always serves snap.
func NewStaticProvider(snap *Snapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

func (sp *StaticProvider) Snapshot() *Snapshot { return sp.snap }
func (sp *StaticProvider) Reload() error       { return nil }
