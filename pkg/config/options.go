package config

import (
	"regexp"
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptStoreDriver sets the store backend.
// Valid values: "sqlite", "postgres".
func OptStoreDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.Driver", s) {
			c.Store.Driver = s
		}
	}
}

// OptStorePath sets the SQLite database file.
func OptStorePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Path", s) {
			c.Store.Path = s
		}
	}
}

// OptStoreHost sets the PostgreSQL server hostname or IP address.
func OptStoreHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Host", s) {
			c.Store.Host = s
		}
	}
}

// OptStorePort sets the PostgreSQL server port number.
func OptStorePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Store Port", i) {
			c.Store.Port = i
		}
	}
}

// OptStoreUser sets the PostgreSQL database username.
func OptStoreUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store User", s) {
			c.Store.User = s
		}
	}
}

// OptStorePassword sets the PostgreSQL database password.
func OptStorePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Password", s) {
			c.Store.Password = s
		}
	}
}

// OptStoreDatabase sets the PostgreSQL database name to connect to.
func OptStoreDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Database", s) {
			c.Store.Database = s
		}
	}
}

// OptStoreSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptStoreSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.SSLMode", s) {
			c.Store.SSLMode = s
		}
	}
}

var urlRe = regexp.MustCompile(`^https?://\S+$`)

// OptReconcileAPIURL sets the base URL of the species API.
// Trailing slashes are removed.
func OptReconcileAPIURL(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "/")
	return func(c *Config) {
		if !isValidString("Reconcile API URL", s) {
			return
		}
		if !urlRe.MatchString(s) {
			warnf("<em>Reconcile API URL</em> is not a URL, ignoring '%s'", s)
			return
		}
		c.Reconcile.APIURL = s
	}
}

// OptReconcileDelayMs sets the pause between remote requests in
// milliseconds.
func OptReconcileDelayMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Reconcile Delay", i) {
			c.Reconcile.DelayMs = i
		}
	}
}

// OptReconcilePageSize sets the limit of children and synonyms pages.
func OptReconcilePageSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Reconcile Page Size", i) {
			c.Reconcile.PageSize = i
		}
	}
}

// OptReconcileGBIFSourceID sets the data source id used for remote keys.
func OptReconcileGBIFSourceID(i int) Option {
	return func(c *Config) {
		if isValidInt("Reconcile GBIF Source ID", i) {
			c.Reconcile.GBIFSourceID = i
		}
	}
}

// OptReconcileTimeoutSec sets the timeout of a single remote request.
func OptReconcileTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Reconcile Timeout", i) {
			c.Reconcile.TimeoutSec = i
		}
	}
}

// OptReconcileWithProgress toggles the progress bar.
// Runtime-only field - not in ToOptions().
func OptReconcileWithProgress(b bool) Option {
	return func(c *Config) {
		c.Reconcile.WithProgress = b
	}
}

// OptImportINatSourceID sets the data source id of iNaturalist.
func OptImportINatSourceID(i int) Option {
	return func(c *Config) {
		if isValidInt("Import iNat Source ID", i) {
			c.Import.INatSourceID = i
		}
	}
}

// OptImportDelimiter sets the CSV field separator. It must be a single
// character.
func OptImportDelimiter(s string) Option {
	return func(c *Config) {
		if len([]rune(s)) != 1 {
			warnf("<em>Import Delimiter</em> must be one character, ignoring '%s'", s)
			return
		}
		c.Import.Delimiter = s
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for parallel operations.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, data, and log locations.
// Set once at startup from os.UserHomeDir(). If the SQLite path is not
// set yet, it is placed into the data directory.
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
			if c.Store.Path == "" {
				c.Store.Path = StoreFilePath(s)
			}
		}
	}
}
