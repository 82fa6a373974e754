package gitsync

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"conftrail/archive"
)

// DeviceConfig is one device's contribution to a synchronization cycle: the
// inventory properties from its data.yml plus the captured configuration text.
type DeviceConfig struct {
	Name       string
	IPAddress  string
	Subtype    string
	Longitude  float64
	Latitude   float64
	RecordedAt archive.Timestamp
	Config     string
}

// deviceMetadata is the data.yml sidecar written next to each configuration
// file. The field set is closed: properties the schema does not know about
// are ignored rather than dispatched dynamically.
type deviceMetadata struct {
	LastUpdate string  `yaml:"last_update"`
	IPAddress  string  `yaml:"ip_address"`
	Subtype    string  `yaml:"subtype"`
	Longitude  float64 `yaml:"longitude"`
	Latitude   float64 `yaml:"latitude"`
}

// loadCheckout reads a configurations checkout: one directory per device,
// holding data.yml and a configuration file named after the device. Devices
// that cannot be parsed are logged and skipped; only an unreadable checkout
// root is an error.
func loadCheckout(root string) ([]DeviceConfig, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read checkout %s: %w", root, err)
	}

	var configs []DeviceConfig
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}
		config, err := loadDeviceDir(root, entry.Name())
		if err != nil {
			log.Printf("Skipping device %q: %v", entry.Name(), err)
			continue
		}
		configs = append(configs, *config)
	}
	return configs, nil
}

func loadDeviceDir(root, name string) (*DeviceConfig, error) {
	dir := filepath.Join(root, name)

	raw, err := os.ReadFile(filepath.Join(dir, "data.yml"))
	if err != nil {
		return nil, fmt.Errorf("read data.yml: %w", err)
	}
	var meta deviceMetadata
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse data.yml: %w", err)
	}

	recordedAt, err := archive.ParseTimestamp(meta.LastUpdate)
	if err != nil {
		return nil, fmt.Errorf("last_update: %w", err)
	}

	text, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("read configuration file: %w", err)
	}

	return &DeviceConfig{
		Name:       name,
		IPAddress:  meta.IPAddress,
		Subtype:    meta.Subtype,
		Longitude:  meta.Longitude,
		Latitude:   meta.Latitude,
		RecordedAt: recordedAt,
		Config:     string(text),
	}, nil
}
