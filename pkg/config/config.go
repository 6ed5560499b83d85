package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup. An empty configPath
// uses DefaultPath.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)

	if err := manager.RegisterSection(NewContainerSection()); err != nil {
		return err
	}

	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetContainer returns the container section from global config.
// Returns nil if config is not initialized.
func GetContainer() *ContainerSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDContainer)
	if !ok {
		return nil
	}

	container, ok := section.(*ContainerSection)
	if !ok {
		return nil
	}

	return container
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}

	browser, ok := section.(*BrowserSection)
	if !ok {
		return nil
	}

	return browser
}
