// Package rewriters contains the concrete rewriters for known host interface
// changes.
package rewriters

import (
	"github.com/wippyai/modcompat/rewrite"
)

// Game1Type is the full name of the game's static entry type.
const Game1Type = "StardewValley.Game1"

// Game1ActiveClickableMenu rewrites static references to
// Game1.activeClickableMenu. Stardew Valley 1.2 changed the field into a
// property, which broke mods compiled against earlier versions.
func Game1ActiveClickableMenu() rewrite.Rewriter {
	return rewrite.FieldToProperty{Type: Game1Type, Field: "activeClickableMenu"}.Rewriter()
}

// Defaults returns the rewriters applied to every mod.
func Defaults() []rewrite.Rewriter {
	return []rewrite.Rewriter{
		Game1ActiveClickableMenu(),
	}
}

// NewRegistry returns a registry with the default rewriters followed by extra.
func NewRegistry(extra ...rewrite.Rewriter) (*rewrite.Registry, error) {
	return rewrite.NewRegistry(append(Defaults(), extra...)...)
}
