// Package topology holds the network and volume model edited on the network
// step, and derives the diagram shown there.
package topology

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/stackwizard/internal/core/domain"
)

// DefaultNetwork is seeded into every session and cannot be removed.
const DefaultNetwork = "default"

var (
	ErrInvalidNetworkName = errors.New("invalid network name")
	ErrDuplicateNetwork   = errors.New("network already exists")
	ErrNetworkNotFound    = errors.New("network not found")
	ErrDefaultNetwork     = errors.New("the default network cannot be removed")
	ErrInvalidVolumeName  = errors.New("invalid volume name")
	ErrDuplicateVolume    = errors.New("volume already exists")
	ErrVolumeNotFound     = errors.New("volume not found")
	ErrInvalidVolumeType  = errors.New("invalid volume type")
)

// resourceNameRegex matches the names compose accepts for networks and volumes.
var resourceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// =============================================================================
// Volumes
// =============================================================================

// VolumeType is the driver flavour of a wizard-defined volume.
type VolumeType string

const (
	VolumeLocal VolumeType = "local"
	VolumeNFS   VolumeType = "nfs"
	VolumeTmpfs VolumeType = "tmpfs"
)

// Volume is a top-level named volume defined on the network step.
type Volume struct {
	Name string     `json:"name"`
	Type VolumeType `json:"type"`
}

// ParseVolumeType accepts local, nfs or tmpfs. Empty means local.
func ParseVolumeType(raw string) (VolumeType, error) {
	switch t := VolumeType(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return VolumeLocal, nil
	case VolumeLocal, VolumeNFS, VolumeTmpfs:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVolumeType, raw)
	}
}

// AddVolume appends a volume definition. The input slice is not modified.
func AddVolume(volumes []Volume, v Volume) ([]Volume, error) {
	if !resourceNameRegex.MatchString(v.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVolumeName, v.Name)
	}
	vt, err := ParseVolumeType(string(v.Type))
	if err != nil {
		return nil, err
	}
	for _, existing := range volumes {
		if existing.Name == v.Name {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVolume, v.Name)
		}
	}
	out := append(append([]Volume{}, volumes...), Volume{Name: v.Name, Type: vt})
	return out, nil
}

// RemoveVolume deletes a volume definition by name.
func RemoveVolume(volumes []Volume, name string) ([]Volume, error) {
	out := make([]Volume, 0, len(volumes))
	found := false
	for _, v := range volumes {
		if v.Name == name {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrVolumeNotFound, name)
	}
	return out, nil
}

// NamedVolumes returns the top-level volume names for a manifest: wizard
// volumes first, then named volumes referenced by services, without repeats.
func NamedVolumes(volumes []Volume, services []domain.ServiceConfig) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, v := range volumes {
		add(v.Name)
	}
	for _, svc := range services {
		for _, m := range svc.Volumes {
			if m.IsNamed() {
				add(m.HostPath)
			}
		}
	}
	return out
}

// =============================================================================
// Networks
// =============================================================================

// DefaultNetworks returns the seeded network list.
func DefaultNetworks() []string {
	return []string{DefaultNetwork}
}

// ValidateNetworkName checks a network name against the compose name rule.
func ValidateNetworkName(name string) error {
	if !resourceNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidNetworkName, name)
	}
	return nil
}

// AddNetwork appends a network. The input slice is not modified.
func AddNetwork(networks []string, name string) ([]string, error) {
	if err := ValidateNetworkName(name); err != nil {
		return nil, err
	}
	for _, n := range networks {
		if n == name {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNetwork, name)
		}
	}
	return append(append([]string{}, networks...), name), nil
}

// RemoveNetwork deletes a network by name. The default network stays.
func RemoveNetwork(networks []string, name string) ([]string, error) {
	if name == DefaultNetwork {
		return nil, ErrDefaultNetwork
	}
	out := make([]string, 0, len(networks))
	found := false
	for _, n := range networks {
		if n == name {
			found = true
			continue
		}
		out = append(out, n)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, name)
	}
	return out, nil
}
