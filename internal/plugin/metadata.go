package plugin

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	semverPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	apiverPattern  = regexp.MustCompile(`^\d+\.x$`)
	payloadPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Mode classifies what a module does to remote state.
type Mode string

const (
	// ModeInfo modules only read and never report a change.
	ModeInfo Mode = "info"
	// ModeWrite modules reconcile a single resource.
	ModeWrite Mode = "write"
)

// PluginMetadata describes a module's identity and output contract.
type PluginMetadata struct {
	Name        string
	Version     string
	APIVersion  string
	Mode        Mode
	PayloadKey  string
	Description string
}

// Validate ensures metadata is well-formed.
func (m PluginMetadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("plugin metadata requires a non-empty Name")
	}
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("plugin '%s' metadata requires Version", m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("plugin '%s' has invalid Version '%s' (expected format: X.Y.Z)", m.Name, m.Version)
	}
	if strings.TrimSpace(m.APIVersion) == "" {
		return fmt.Errorf("plugin '%s' metadata requires APIVersion", m.Name)
	}
	if !apiverPattern.MatchString(m.APIVersion) {
		return fmt.Errorf("plugin '%s' has invalid APIVersion '%s' (expected format: N.x)", m.Name, m.APIVersion)
	}
	if m.Mode != ModeInfo && m.Mode != ModeWrite {
		return fmt.Errorf("plugin '%s' has invalid Mode '%s' (expected info or write)", m.Name, m.Mode)
	}
	if !payloadPattern.MatchString(m.PayloadKey) {
		return fmt.Errorf("plugin '%s' has invalid PayloadKey '%s'", m.Name, m.PayloadKey)
	}
	return nil
}
