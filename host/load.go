package host

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/modcompat/errors"
)

// mapFile is the TOML layout of a host description.
type mapFile struct {
	Platform    string      `toml:"platform"`
	RemoveNames []string    `toml:"remove-names"`
	Assemblies  []*Assembly `toml:"assembly"`
}

// LoadMap reads a host description from a TOML file. The platform argument
// is used when the file does not name one.
func LoadMap(path string, platform Platform) (*PlatformAssemblyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read host description "+path, err)
	}
	return ParseMap(data, platform)
}

// ParseMap parses a host description.
//
//	platform = "linux"
//	remove-names = ["Stardew Valley"]
//
//	[[assembly]]
//	name = "StardewValley"
//
//	[[assembly.type]]
//	name = "StardewValley.Game1"
//
//	[[assembly.type.method]]
//	name = "get_activeClickableMenu"
//	returns = "StardewValley.Menus.IClickableMenu"
//	static = true
func ParseMap(data []byte, platform Platform) (*PlatformAssemblyMap, error) {
	var f mapFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse host description")
	}

	if f.Platform != "" {
		p, err := ParsePlatform(f.Platform)
		if err != nil {
			return nil, err
		}
		platform = p
	}

	for i, asm := range f.Assemblies {
		if asm.Name == "" {
			return nil, errors.InvalidData(errors.PhaseConfig, []string{"assembly"},
				"assembly without a name at position "+strconv.Itoa(i))
		}
		for _, t := range asm.Types {
			if t.FullName == "" {
				return nil, errors.InvalidData(errors.PhaseConfig, []string{asm.Name}, "type without a name")
			}
			for _, m := range t.Methods {
				if m.Name == "" {
					return nil, errors.InvalidData(errors.PhaseConfig, []string{asm.Name, t.FullName}, "method without a name")
				}
			}
		}
	}

	return NewPlatformAssemblyMap(platform, &Interface{Assemblies: f.Assemblies}, f.RemoveNames), nil
}
