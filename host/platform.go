package host

import (
	"slices"
	"strings"

	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
)

// Platform is an operating system build of the host application.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	Mac     Platform = "mac"
)

// ParsePlatform parses a platform name, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case Windows, Linux, Mac:
		return p, nil
	case "darwin", "macos", "osx":
		return Mac, nil
	default:
		return "", errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(s).
			Detail("unknown platform %q", s).
			Build()
	}
}

// PlatformAssemblyMap maps assembly references for the platform the host is
// running on. Mods built against another platform reference assemblies in
// RemoveNames; those references are retargeted to the host's assemblies.
type PlatformAssemblyMap struct {
	Interface   *Interface
	Platform    Platform
	RemoveNames []string
}

// NewPlatformAssemblyMap creates a map for platform over the given host
// interface.
func NewPlatformAssemblyMap(platform Platform, iface *Interface, removeNames []string) *PlatformAssemblyMap {
	if iface == nil {
		iface = &Interface{}
	}
	return &PlatformAssemblyMap{
		Platform:    platform,
		Interface:   iface,
		RemoveNames: slices.Clone(removeNames),
	}
}

// IsRemoved reports whether assembly belongs to another platform's build.
func (m *PlatformAssemblyMap) IsRemoved(assembly string) bool {
	return slices.Contains(m.RemoveNames, assembly)
}

// Targets returns the names of the host assemblies on this platform.
func (m *PlatformAssemblyMap) Targets() []string {
	return m.Interface.AssemblyNames()
}

// FindMethod resolves a host method by declaring type and name.
func (m *PlatformAssemblyMap) FindMethod(typeName, methodName string) (*cil.MethodRef, bool) {
	return m.Interface.FindMethod(typeName, methodName)
}

// TargetFor returns the host assembly that should replace a removed
// assembly reference. Removed names pair positionally with host assemblies;
// extra removed names map to the first host assembly.
func (m *PlatformAssemblyMap) TargetFor(removed string) (string, bool) {
	idx := slices.Index(m.RemoveNames, removed)
	if idx < 0 || len(m.Interface.Assemblies) == 0 {
		return "", false
	}
	if idx < len(m.Interface.Assemblies) {
		return m.Interface.Assemblies[idx].Name, true
	}
	return m.Interface.Assemblies[0].Name, true
}
