package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != len(BuiltinThemes) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(BuiltinThemes))
	}
	for _, name := range names {
		theme := GetTheme(name)
		if theme.Primary == "" || theme.Text == "" {
			t.Errorf("theme %q has empty core colors", name)
		}
	}
}

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	got := GetTheme("neon")
	want := BuiltinThemes[DefaultTheme]
	if got.Name != want.Name {
		t.Errorf("GetTheme(unknown) = %q, want %q", got.Name, want.Name)
	}
}

func TestSetThemeByName(t *testing.T) {
	t.Cleanup(func() { SetTheme(DefaultTheme) })

	SetThemeByName("light")
	if CurrentThemeName() != ThemeLight {
		t.Errorf("CurrentThemeName() = %q, want %q", CurrentThemeName(), ThemeLight)
	}
	if CurrentTheme().Name != BuiltinThemes[ThemeLight].Name {
		t.Errorf("CurrentTheme() = %q", CurrentTheme().Name)
	}

	SetThemeByName("does-not-exist")
	if CurrentThemeName() != DefaultTheme {
		t.Errorf("unknown theme should fall back to %q, got %q", DefaultTheme, CurrentThemeName())
	}
}

func TestToggleTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(DefaultTheme) })

	SetTheme(ThemeDark)
	if got := ToggleTheme(); got != ThemeLight {
		t.Errorf("ToggleTheme() from dark = %q", got)
	}
	if got := ToggleTheme(); got != ThemeDark {
		t.Errorf("ToggleTheme() from light = %q", got)
	}
}

func TestTheme_Defaults(t *testing.T) {
	theme := Theme{Primary: "#111111"}
	if theme.GetBgSelected() != "#111111" {
		t.Errorf("GetBgSelected() = %q", theme.GetBgSelected())
	}
	if theme.GetBorderFocus() != "#111111" {
		t.Errorf("GetBorderFocus() = %q", theme.GetBorderFocus())
	}

	theme.BgSelected = "#222222"
	if theme.GetBgSelected() != "#222222" {
		t.Errorf("GetBgSelected() = %q", theme.GetBgSelected())
	}
}
