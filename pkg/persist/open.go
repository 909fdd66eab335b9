package persist

import (
	"context"
	"strings"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// Config selects and configures backends.
type Config struct {
	// Backends names the backends to write to: null, disk, redis, mongo,
	// sqlite. Empty means null.
	Backends []string
	DiskDir  string
	Redis    RedisConfig
	Mongo    MongoConfig
	SQLite   string
}

// Open builds the configured backends. One name returns that backend
// directly; several are combined with NewMulti. A failure closes whatever
// was already opened.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	var opened []Backend
	fail := func(err error) (Backend, error) {
		for _, b := range opened {
			_ = b.Close()
		}
		return nil, err
	}

	seen := make(map[string]bool)
	for _, raw := range cfg.Backends {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var (
			b   Backend
			err error
		)
		switch name {
		case "null", "none":
			b = NewNull()
		case "disk":
			b, err = NewDisk(cfg.DiskDir)
		case "redis":
			b, err = NewRedis(ctx, cfg.Redis)
		case "mongo", "mongodb":
			b, err = NewMongo(ctx, cfg.Mongo)
		case "sqlite", "sqlite3":
			b, err = NewSQLite(cfg.SQLite)
		default:
			err = errors.New(errors.ErrCodeInvalidConfig, "unknown persist backend %q", raw)
		}
		if err != nil {
			return fail(err)
		}
		opened = append(opened, b)
	}

	switch len(opened) {
	case 0:
		return NewNull(), nil
	case 1:
		return opened[0], nil
	}
	return NewMulti(opened...), nil
}
