package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.yaml",
			content: `# Scene: Cornell Box
# Variant: Empty Room
# Description: Classic Cornell box with no objects
# Group: Cornell Variants

camera: {center: [0, 0, 5], look_at: [0, 0, 0]}`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Cornell Box",
				DisplayName: "Cornell Box - Empty Room",
				Description: "Classic Cornell box with no objects",
				Group:       "Cornell Variants",
				Variant:     "Empty Room",
			},
		},
		{
			name: "partial_metadata.yaml",
			content: `# Scene: Panel
# Description: One textured panel

camera: {center: [0, 0, 5], look_at: [0, 0, 0]}`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Panel",
				DisplayName: "Panel",
				Description: "One textured panel",
				Group:       GroupDescription,
			},
		},
		{
			name:    "no_metadata.yaml",
			content: `camera: {center: [0, 0, 5], look_at: [0, 0, 0]}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       GroupDescription,
			},
		},
		{
			name: "mixed_content.yaml",
			content: `# Scene: Test Scene
camera: {center: [0, 0, 5], look_at: [0, 0, 0]}
# Variant: Ignored`,
			expected: SceneInfo{
				ID:          "file:mixed_content",
				Name:        "Test Scene",
				DisplayName: "Test Scene",
				Group:       GroupDescription,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.Type = "file"
			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	info, err := ParseSceneMetadata("nonexistent.yaml")
	if err != nil {
		t.Errorf("Missing files should fall back to defaults: %v", err)
	}
	if info.DisplayName != "Nonexistent" {
		t.Errorf("Expected fallback display name, got %q", info.DisplayName)
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty slice, got %v", scenes)
	}
}

func TestListScenes(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b-room.yaml"), []byte("# Group: Rooms\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "a-panel.yaml"), []byte("# Scene: Panel\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	groups, err := ListScenes(dir)
	if err != nil {
		t.Fatalf("ListScenes() error: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d: %+v", len(groups), groups)
	}
	if groups[0].Name != GroupBuiltin {
		t.Errorf("Built-in group should come first, got %q", groups[0].Name)
	}
	if len(groups[0].Scenes) != len(BuiltinNames()) {
		t.Errorf("Expected %d builtin scenes, got %d", len(BuiltinNames()), len(groups[0].Scenes))
	}
	if groups[1].Name != "Rooms" || groups[2].Name != GroupDescription {
		t.Errorf("Unexpected group order %q, %q", groups[1].Name, groups[2].Name)
	}
	if groups[2].Scenes[0].Name != "Panel" {
		t.Errorf("Expected Panel, got %+v", groups[2].Scenes[0])
	}

	for _, group := range groups {
		for _, info := range group.Scenes {
			if info.ID == "" || info.DisplayName == "" {
				t.Errorf("Scene missing ID or display name: %+v", info)
			}
			if info.Type == "builtin" {
				if _, err := Builtin(info.ID); err != nil {
					t.Errorf("Builtin %q not constructible: %v", info.ID, err)
				}
			}
		}
	}
}
