package host

const (
	// GameAssemblyWindows is the game assembly name on Windows.
	GameAssemblyWindows = "Stardew Valley"
	// GameAssemblyUnix is the game assembly name on Linux and Mac.
	GameAssemblyUnix = "StardewValley"

	xnaAssembly      = "Microsoft.Xna.Framework"
	monoGameAssembly = "MonoGame.Framework"

	clickableMenuType = "StardewValley.Menus.IClickableMenu"
)

// StardewValley returns the built-in host map for Stardew Valley 1.2 on the
// given platform.
func StardewValley(platform Platform) *PlatformAssemblyMap {
	game, framework := GameAssemblyUnix, monoGameAssembly
	remove := []string{GameAssemblyWindows, xnaAssembly}
	if platform == Windows {
		game, framework = GameAssemblyWindows, xnaAssembly
		remove = []string{GameAssemblyUnix, monoGameAssembly}
	}

	iface := &Interface{
		Assemblies: []*Assembly{
			{
				Name: game,
				Types: []*Type{{
					FullName: "StardewValley.Game1",
					Methods: []Method{
						{Name: "get_activeClickableMenu", ReturnType: clickableMenuType, Static: true},
						{Name: "set_activeClickableMenu", Params: []string{clickableMenuType}, Static: true},
					},
				}},
			},
			{Name: framework},
		},
	}
	return NewPlatformAssemblyMap(platform, iface, remove)
}
