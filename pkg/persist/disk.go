package persist

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// Disk stores each key as a JSON file under a base directory.
type Disk struct {
	d   *diskv.Diskv
	dir string
}

// NewDisk opens a disk backend rooted at dir, creating it if needed.
func NewDisk(dir string) (*Disk, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "disk backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "create %s", dir)
	}
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      4 * 1024 * 1024,
		}),
		dir: dir,
	}, nil
}

// keyToPath puts every key in the base directory as <key>.json.
func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{FileName: key + ".json"}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.TrimSuffix(pk.FileName, ".json")
}

// Dir returns the base directory.
func (d *Disk) Dir() string { return d.dir }

// Name returns "disk".
func (d *Disk) Name() string { return "disk" }

// Get reads key. A missing file is a miss.
func (d *Disk) Get(_ context.Context, key string) ([]byte, bool, error) {
	if !d.d.Has(key) {
		return nil, false, nil
	}
	data, err := d.d.Read(key)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendErr(d.Name(), err, "read")
	}
	return data, true, nil
}

// Set writes key and syncs it to disk.
func (d *Disk) Set(_ context.Context, key string, data []byte) error {
	return backendErr(d.Name(), d.d.WriteStream(key, bytes.NewReader(data), true), "write")
}

// Delete erases key.
func (d *Disk) Delete(_ context.Context, key string) error {
	if !d.d.Has(key) {
		return nil
	}
	return backendErr(d.Name(), d.d.Erase(key), "erase")
}

// Close does nothing; every write is already synced.
func (d *Disk) Close() error { return nil }

var _ Backend = (*Disk)(nil)
