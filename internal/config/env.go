package config

import (
	"strconv"
	"time"
)

// Environment variables overriding the config file.
const (
	EnvLogLevel  = "CARELIST_LOG_LEVEL"
	EnvLogFormat = "CARELIST_LOG_FORMAT"
	EnvLogFile   = "CARELIST_LOG_FILE"
	EnvSource    = "CARELIST_SOURCE"
	EnvAPIURL    = "CARELIST_API_URL"
	EnvDSN       = "CARELIST_DSN"
	EnvPageSize  = "CARELIST_PAGE_SIZE"
	EnvMaxItems  = "CARELIST_MAX_ITEMS"
	EnvSort      = "CARELIST_SORT"
	EnvUser      = "CARELIST_USER"
	EnvWorkspace = "CARELIST_WORKSPACE"
	EnvHold      = "CARELIST_HOLD_DURATION"

	// EnvDatabaseURL is the conventional Postgres variable, used when
	// CARELIST_DSN is unset.
	EnvDatabaseURL = "DATABASE_URL"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv applies CARELIST_* overrides. Values that do not parse are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str(EnvLogLevel, &c.Logging.Level)
	str(EnvLogFormat, &c.Logging.Format)
	if v, ok := lookup(EnvLogFile); ok {
		// An empty value switches file logging off.
		c.Logging.File = v
	}

	str(EnvSource, &c.Source.Kind)
	str(EnvAPIURL, &c.Source.BaseURL)
	str(EnvDatabaseURL, &c.Source.DSN)
	str(EnvDSN, &c.Source.DSN)
	num(EnvPageSize, &c.Source.PageSize)
	num(EnvMaxItems, &c.Source.MaxItems)
	str(EnvSort, &c.Source.Sort)

	str(EnvUser, &c.Session.User)
	str(EnvWorkspace, &c.Session.Workspace)

	if v, ok := lookup(EnvHold); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.List.HoldDuration = d
		}
	}

	c.Cache = c.Cache.ApplyEnv()
}
