package container

import (
	"time"

	"github.com/entrhq/sessionkeeper/pkg/config"
)

// Settings is the process-wide behaviour of a container. It is read again on
// every call that needs it, never cached on a session.
type Settings struct {
	// RecreateOnFailure makes GetVerifiedSession probe an existing session and
	// replace it when it is confirmed gone.
	RecreateOnFailure bool

	// RetainOpen skips destroying released sessions so they can be inspected.
	// Bookkeeping entries are still removed.
	RetainOpen bool

	// CloseTimeout bounds how long Release waits for Destroy.
	CloseTimeout time.Duration

	// ReapInterval is the pause between two reaper scans.
	ReapInterval time.Duration

	// SlowCloseThreshold is the elapsed time above which a successful close
	// is logged at info level.
	SlowCloseThreshold time.Duration
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		RecreateOnFailure:  config.DefaultRecreateOnFailure,
		RetainOpen:         config.DefaultRetainOpen,
		CloseTimeout:       config.DefaultCloseTimeout,
		ReapInterval:       config.DefaultReapInterval,
		SlowCloseThreshold: config.DefaultSlowCloseThreshold,
	}
}

// GlobalSettings returns the settings of the global configuration, or the
// defaults when it has not been initialized. Non-positive durations set at
// runtime fall back to the defaults.
func GlobalSettings() Settings {
	settings := DefaultSettings()
	if !config.IsInitialized() {
		return settings
	}
	section := config.GetContainer()
	if section == nil {
		return settings
	}

	settings.RecreateOnFailure = section.RecreateOnFailure()
	settings.RetainOpen = section.RetainOpen()
	settings.CloseTimeout = section.CloseTimeout()
	settings.ReapInterval = section.ReapInterval()
	settings.SlowCloseThreshold = section.SlowCloseThreshold()
	return settings.withDefaults()
}

// withDefaults replaces non-positive durations by the built-in defaults.
func (s Settings) withDefaults() Settings {
	if s.CloseTimeout <= 0 {
		s.CloseTimeout = config.DefaultCloseTimeout
	}
	if s.ReapInterval <= 0 {
		s.ReapInterval = config.DefaultReapInterval
	}
	if s.SlowCloseThreshold <= 0 {
		s.SlowCloseThreshold = config.DefaultSlowCloseThreshold
	}
	return s
}

// StaticSettings returns a settings source that always yields s.
func StaticSettings(s Settings) func() Settings {
	return func() Settings { return s }
}
