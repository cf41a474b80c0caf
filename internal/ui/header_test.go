package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// stripANSI removes ANSI escape codes from a string for testing
func stripANSI(s string) string {
	return ansi.Strip(s)
}

func TestNewHeader(t *testing.T) {
	header := NewHeader()

	if header == nil {
		t.Fatal("NewHeader() returned nil")
	}
	if header.modeLabel != "" {
		t.Error("Expected empty mode label initially")
	}
}

func TestHeader_SetWidth(t *testing.T) {
	header := NewHeader()

	header.SetWidth(120)

	if header.width != 120 {
		t.Errorf("Expected width 120, got %d", header.width)
	}
}

func TestHeader_View_Title(t *testing.T) {
	header := NewHeader()
	header.SetWidth(80)

	view := stripANSI(header.View())

	if !strings.HasPrefix(view, " "+AppTitle) {
		t.Errorf("Header should start with the title, got: %q", view)
	}
}

func TestHeader_View_WithModeAndModel(t *testing.T) {
	header := NewHeader()
	header.SetWidth(120)
	header.SetModeLabel("Derecho Laboral 💼")
	header.SetModel("anthropic/claude-3.5-sonnet")

	view := stripANSI(header.View())

	if !strings.Contains(view, "Derecho Laboral 💼") {
		t.Errorf("Header should contain mode label, got: %q", view)
	}
	if !strings.Contains(view, "(anthropic/claude-3.5-sonnet)") {
		t.Errorf("Header should contain model, got: %q", view)
	}
}

func TestHeader_View_NoModel(t *testing.T) {
	header := NewHeader()
	header.SetWidth(100)
	header.SetModeLabel("Consulta General ⚖️")

	view := stripANSI(header.View())

	if strings.Contains(view, "(") {
		t.Errorf("Header should not show a model when unset, got: %q", view)
	}
}

func TestHeader_View_DisplayWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		label string
	}{
		{"ascii", 80, "General"},
		{"accented", 100, "Análisis de Documentos"},
		{"emoji icon", 120, "Derecho Penal 🚨"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := NewHeader()
			header.SetWidth(tt.width)
			header.SetModeLabel(tt.label)

			view := stripANSI(header.View())
			if got := runewidth.StringWidth(view); got != tt.width {
				t.Errorf("Header display width should be %d, got %d (%q)", tt.width, got, view)
			}
		})
	}
}

func TestHeader_View_NarrowKeepsContent(t *testing.T) {
	header := NewHeader()
	header.SetWidth(10)
	header.SetModeLabel("Derecho Civil 🏠")

	view := stripANSI(header.View())
	if !strings.Contains(view, AppTitle) || !strings.Contains(view, "Derecho Civil") {
		t.Errorf("Narrow header should keep title and mode, got: %q", view)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		r, g, b int
	}{
		{"#7C3AED", 0x7C, 0x3A, 0xED},
		{"#000000", 0, 0, 0},
		{"invalid", 0, 0, 0},
		{"#FFF", 0, 0, 0},
	}

	for _, tt := range tests {
		r, g, b := parseHexColor(tt.hex)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHexColor(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.hex, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
