package scheduler

import (
	"time"
)

// Config controls the run cadence and scope of the reminder jobs.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	// LockTTL bounds how long a crashed run keeps its job locked.
	LockTTL time.Duration
	// DryRun computes and logs every decision but writes and sends nothing.
	DryRun bool
	// EnabledJobs narrows the run to the named jobs. Empty means all.
	EnabledJobs []string
	// UserScope and VehicleScope narrow a run to one user or vehicle id.
	// Empty means fleet-wide.
	UserScope    string
	VehicleScope string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 24 * time.Hour,
		JobTimeout:  10 * time.Minute,
		LockTTL:     15 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.LockTTL < c.JobTimeout {
		c.LockTTL = c.JobTimeout
	}
	return c
}
