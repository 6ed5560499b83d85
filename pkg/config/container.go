package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDContainer is the identifier for the session container section
	SectionIDContainer = "container"

	// Defaults for the session container
	DefaultRecreateOnFailure  = true
	DefaultRetainOpen         = false
	DefaultCloseTimeout       = 5 * time.Second
	DefaultReapInterval       = 100 * time.Millisecond
	DefaultSlowCloseThreshold = 200 * time.Millisecond
)

// ContainerSection configures how sessions are verified and released.
type ContainerSection struct {
	recreateOnFailure  bool
	retainOpen         bool
	closeTimeout       time.Duration
	reapInterval       time.Duration
	slowCloseThreshold time.Duration
	mu                 sync.RWMutex
}

// NewContainerSection creates a container section with default settings.
func NewContainerSection() *ContainerSection {
	s := &ContainerSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *ContainerSection) ID() string {
	return SectionIDContainer
}

// Title returns the section title.
func (s *ContainerSection) Title() string {
	return "Session Container"
}

// Description returns the section description.
func (s *ContainerSection) Description() string {
	return "Configure health checks, retention and close timeouts of per-worker browser sessions."
}

// Data returns the current configuration data.
func (s *ContainerSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"recreate_on_failure":  s.recreateOnFailure,
		"retain_open":          s.retainOpen,
		"close_timeout":        s.closeTimeout.String(),
		"reap_interval":        s.reapInterval.String(),
		"slow_close_threshold": s.slowCloseThreshold.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *ContainerSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "recreate_on_failure":
			s.recreateOnFailure, err = boolValue(key, value)
		case "retain_open":
			s.retainOpen, err = boolValue(key, value)
		case "close_timeout":
			s.closeTimeout, err = durationValue(key, value)
		case "reap_interval":
			s.reapInterval, err = durationValue(key, value)
		case "slow_close_threshold":
			s.slowCloseThreshold, err = durationValue(key, value)
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *ContainerSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closeTimeout <= 0 {
		return fmt.Errorf("close_timeout must be positive, got %v", s.closeTimeout)
	}
	if s.reapInterval < 10*time.Millisecond || s.reapInterval > time.Minute {
		return fmt.Errorf("reap_interval must be between 10ms and 1m, got %v", s.reapInterval)
	}
	if s.slowCloseThreshold < 0 || s.slowCloseThreshold > s.closeTimeout {
		return fmt.Errorf("slow_close_threshold must be between 0 and close_timeout, got %v", s.slowCloseThreshold)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *ContainerSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recreateOnFailure = DefaultRecreateOnFailure
	s.retainOpen = DefaultRetainOpen
	s.closeTimeout = DefaultCloseTimeout
	s.reapInterval = DefaultReapInterval
	s.slowCloseThreshold = DefaultSlowCloseThreshold
}

// RecreateOnFailure reports whether dead sessions are replaced on verified access.
func (s *ContainerSection) RecreateOnFailure() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recreateOnFailure
}

// SetRecreateOnFailure sets whether dead sessions are replaced on verified access.
func (s *ContainerSection) SetRecreateOnFailure(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recreateOnFailure = enabled
}

// RetainOpen reports whether released sessions are left running.
func (s *ContainerSection) RetainOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retainOpen
}

// SetRetainOpen sets whether released sessions are left running.
func (s *ContainerSection) SetRetainOpen(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retainOpen = enabled
}

// CloseTimeout returns the budget for destroying a session.
func (s *ContainerSection) CloseTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeTimeout
}

// SetCloseTimeout sets the budget for destroying a session.
func (s *ContainerSection) SetCloseTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeTimeout = d
}

// ReapInterval returns the pause between two scans for dead workers.
func (s *ContainerSection) ReapInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reapInterval
}

// SetReapInterval sets the pause between two scans for dead workers.
func (s *ContainerSection) SetReapInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapInterval = d
}

// SlowCloseThreshold returns the duration above which a close is reported as slow.
func (s *ContainerSection) SlowCloseThreshold() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slowCloseThreshold
}
