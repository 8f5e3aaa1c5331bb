package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Reconcile.WithProgress).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Store.Driver
	if s != "" {
		res = append(res, OptStoreDriver(s))
	}
	s = c.Store.Path
	if s != "" {
		res = append(res, OptStorePath(s))
	}
	s = c.Store.Host
	if s != "" {
		res = append(res, OptStoreHost(s))
	}
	i = c.Store.Port
	if i > 0 {
		res = append(res, OptStorePort(i))
	}
	s = c.Store.User
	if s != "" {
		res = append(res, OptStoreUser(s))
	}
	s = c.Store.Password
	if s != "" {
		res = append(res, OptStorePassword(s))
	}
	s = c.Store.Database
	if s != "" {
		res = append(res, OptStoreDatabase(s))
	}
	s = c.Store.SSLMode
	if s != "" {
		res = append(res, OptStoreSSLMode(s))
	}

	s = c.Reconcile.APIURL
	if s != "" {
		res = append(res, OptReconcileAPIURL(s))
	}
	i = c.Reconcile.DelayMs
	if i > 0 {
		res = append(res, OptReconcileDelayMs(i))
	}
	i = c.Reconcile.PageSize
	if i > 0 {
		res = append(res, OptReconcilePageSize(i))
	}
	i = c.Reconcile.GBIFSourceID
	if i > 0 {
		res = append(res, OptReconcileGBIFSourceID(i))
	}
	i = c.Reconcile.TimeoutSec
	if i > 0 {
		res = append(res, OptReconcileTimeoutSec(i))
	}

	i = c.Import.INatSourceID
	if i > 0 {
		res = append(res, OptImportINatSourceID(i))
	}
	s = c.Import.Delimiter
	if s != "" {
		res = append(res, OptImportDelimiter(s))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func warnf(format string, vals ...any) {
	gn.Warn(format, vals...)
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Store.Driver": {"sqlite": s, "postgres": s},
		"Store.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
