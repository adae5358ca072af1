// Package host describes the current shape of the host application's public
// interface and how assembly names differ between platform builds.
//
// A PlatformAssemblyMap answers the questions rewriters ask while adapting a
// mod: which accessor methods does the host expose, and which assembly
// references in a mod belong to another platform's build of the host.
//
//	amap := host.StardewValley(host.Linux)
//	getter, ok := amap.FindMethod("StardewValley.Game1", "get_activeClickableMenu")
//
// Maps can also be loaded from a TOML description with LoadMap.
package host
