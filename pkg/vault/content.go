package vault

import (
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
)

const filePerm = 0644

func (v *Vault) lock(p string) func() {
	v.locksMu.Lock()
	mu, ok := v.locks[p]
	if !ok {
		mu = &sync.Mutex{}
		v.locks[p] = mu
	}
	v.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// Read returns the content of vault path p.
func (v *Vault) Read(p string) (string, error) {
	data, err := v.fs.ReadFile(v.Abs(p))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", p)
	}
	return string(data), nil
}

// Create writes a new file at p with modification time ts. It fails when
// the file exists.
func (v *Vault) Create(p string, content string, ts int64) (*types.File, error) {
	defer v.lock(p)()

	abs := v.Abs(p)
	if _, err := v.fs.Stat(abs); err == nil {
		return nil, errors.Newf(errors.ErrFileCreate, "%q already exists", p)
	}
	if err := v.fs.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create folder for %q", p)
	}
	if err := v.write(abs, content, ts); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileCreate, "cannot create %q", p)
	}
	v.Reindex(p)
	return v.Stat(p)
}

// Modify replaces the content of the existing file p.
func (v *Vault) Modify(p string, content string, ts int64) error {
	defer v.lock(p)()

	abs := v.Abs(p)
	if _, err := v.fs.Stat(abs); err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "cannot modify %q", p)
	}
	if err := v.write(abs, content, ts); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot modify %q", p)
	}
	v.Reindex(p)
	return nil
}

// Process rewrites p with fn applied to its current content. Errors from fn
// are returned unchanged and leave the file untouched.
func (v *Vault) Process(p string, fn func(content string) (string, error), ts int64) error {
	defer v.lock(p)()

	abs := v.Abs(p)
	data, err := v.fs.ReadFile(abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", p)
	}
	updated, err := fn(string(data))
	if err != nil {
		return err
	}
	if err := v.write(abs, updated, ts); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", p)
	}
	v.Reindex(p)
	return nil
}

// Trash moves p into the vault trash folder, numbering the name on collision.
func (v *Vault) Trash(p string) error {
	defer v.lock(p)()
	logger := logging.GetLogger("vault.trash").With().Str("path", p).Logger()

	if err := v.fs.MkdirAll(v.trashDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create trash folder")
	}

	name := path.Base(p)
	base, ext := types.SplitName(name)
	dest := filepath.Join(v.trashDir, name)
	for i := 1; ; i++ {
		if _, err := v.fs.Stat(dest); err != nil {
			break
		}
		candidate := fmt.Sprintf("%s %d", base, i)
		if ext != "" {
			candidate += "." + ext
		}
		dest = filepath.Join(v.trashDir, candidate)
	}

	if err := v.fs.Rename(v.Abs(p), dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot move %q to trash", p)
	}
	v.Reindex(p)
	logger.Info().Str("dest", dest).Msg("Moved to trash")
	return nil
}

func (v *Vault) write(abs, content string, ts int64) error {
	if err := v.fs.WriteFile(abs, []byte(content), filePerm); err != nil {
		return err
	}
	stamp := time.UnixMilli(ts)
	return v.fs.Chtimes(abs, stamp, stamp)
}

// Reindex brings the resolution index in line with p after a write or an
// outside change.
func (v *Vault) Reindex(p string) {
	v.indexMu.Lock()
	defer v.indexMu.Unlock()
	if v.index == nil {
		return
	}
	if _, err := v.fs.Stat(v.Abs(p)); err == nil {
		v.index.add(types.NormalizePath(p))
		return
	}
	v.index.remove(types.NormalizePath(p))
}
