package persist

import (
	"context"
	"fmt"
	"strings"
)

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver string
	// Path is the file or SQLite database location.
	Path string
	// DSN is the MySQL data source name.
	DSN   string
	Redis RedisConfig
}

// Open returns the KV backend described by opts.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		return OpenFile(opts.Path)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, opts.Path)
	case DriverMySQL:
		return OpenMySQL(ctx, opts.DSN)
	case DriverRedis:
		return OpenRedis(ctx, opts.Redis)
	case DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", opts.Driver)
	}
}
