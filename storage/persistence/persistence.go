package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/kylycht/currconv/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultFileName of the rates snapshot
const DefaultFileName = "rates.xml"

type Persistence struct {
	fs   afero.Fs // underlying filesystem
	path string   // snapshot file path
}

func New(fs afero.Fs, path string) *Persistence {
	if path == "" {
		path = DefaultFileName
	}

	return &Persistence{
		fs:   fs,
		path: path,
	}
}

// Path returns the snapshot file path.
func (p *Persistence) Path() string {
	return p.path
}

// Save implements storage.Snapshot.
// The file is written next to the target and renamed over it,
// so a failed write never leaves a truncated snapshot behind.
func (p *Persistence) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(p.fs, dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := p.fs.Remove(tmpName); rmErr != nil {
			log.Warn().Err(rmErr).Str("file", tmpName).Msg("unable to remove temp snapshot")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := p.fs.Rename(tmpName, p.path); err != nil {
		cleanup()
		return fmt.Errorf("replace snapshot %s: %w", p.path, err)
	}

	log.Debug().Str("file", p.path).Int("bytes", len(data)).Msg("rates snapshot saved")
	return nil
}

// Load implements storage.Snapshot.
func (p *Persistence) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist, run update first", storage.ErrNoSnapshot, p.path)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", p.path, err)
	}

	return data, nil
}

var _ storage.Snapshot = (*Persistence)(nil)
