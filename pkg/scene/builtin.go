package scene

import (
	"fmt"
	"sort"
)

// builtinScene describes a scene constructed in code
type builtinScene struct {
	create      func() *Scene
	displayName string
	description string
}

var builtins = map[string]builtinScene{
	"cornell": {
		create:      NewCornellScene,
		displayName: "Cornell Box",
		description: "Cornell box lit by a ceiling quad light, two GGX spheres",
	},
	"default": {
		create:      NewDefaultScene,
		displayName: "Default Scene",
		description: "Spheres on a checkered ground with two triangle lights",
	},
	"textured": {
		create:      NewTexturedLightScene,
		displayName: "Textured Light",
		description: "Gradient quad light over floors of increasing roughness",
	},
}

// Builtin creates a builtin scene by name
func Builtin(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q, expected one of %v", name, BuiltinNames())
	}
	return b.create(), nil
}

// BuiltinNames returns the builtin scene names in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
