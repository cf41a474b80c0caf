package ui

import (
	"sync"
	"testing"
)

func TestGetViewContext_Singleton(t *testing.T) {
	ctx1 := GetViewContext()
	ctx2 := GetViewContext()

	if ctx1 != ctx2 {
		t.Error("GetViewContext should return the same instance")
	}
}

func TestViewContext_UpdateTerminalSize(t *testing.T) {
	ctx := GetViewContext()

	ctx.UpdateTerminalSize(120, 40)

	if ctx.TerminalWidth != 120 {
		t.Errorf("Expected TerminalWidth 120, got %d", ctx.TerminalWidth)
	}
	if ctx.TerminalHeight != 40 {
		t.Errorf("Expected TerminalHeight 40, got %d", ctx.TerminalHeight)
	}

	expectedContent := 40 - HeaderHeight - FooterHeight
	if ctx.ContentHeight != expectedContent {
		t.Errorf("Expected ContentHeight %d, got %d", expectedContent, ctx.ContentHeight)
	}

	expectedSidebar := SidebarWidthFor(120)
	if ctx.SidebarWidth != expectedSidebar {
		t.Errorf("Expected SidebarWidth %d, got %d", expectedSidebar, ctx.SidebarWidth)
	}
	if ctx.ChatWidth != 120-expectedSidebar {
		t.Errorf("Expected ChatWidth %d, got %d", 120-expectedSidebar, ctx.ChatWidth)
	}
}

func TestViewContext_UpdateTerminalSize_Clamps(t *testing.T) {
	ctx := GetViewContext()

	ctx.UpdateTerminalSize(5, 2)

	if ctx.TerminalWidth != MinTerminalWidth {
		t.Errorf("TerminalWidth = %d, want %d", ctx.TerminalWidth, MinTerminalWidth)
	}
	if ctx.TerminalHeight != MinTerminalHeight {
		t.Errorf("TerminalHeight = %d, want %d", ctx.TerminalHeight, MinTerminalHeight)
	}
	if ctx.ContentHeight <= 0 {
		t.Errorf("ContentHeight should stay positive, got %d", ctx.ContentHeight)
	}
}

func TestSidebarWidthFor(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{200, 50},
		{120, 30},
		{80, MinSidebarWidth},
		{40, 20},
	}

	for _, tt := range tests {
		if got := SidebarWidthFor(tt.width); got != tt.want {
			t.Errorf("SidebarWidthFor(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestViewContext_InnerWidth(t *testing.T) {
	ctx := GetViewContext()

	tests := []struct {
		panelWidth int
		expected   int
	}{
		{40, 40 - BorderSize},
		{80, 80 - BorderSize},
		{BorderSize, 0},
	}

	for _, tt := range tests {
		result := ctx.InnerWidth(tt.panelWidth)
		if result != tt.expected {
			t.Errorf("InnerWidth(%d) = %d, want %d", tt.panelWidth, result, tt.expected)
		}
	}
}

func TestViewContext_InnerHeight(t *testing.T) {
	ctx := GetViewContext()

	if got := ctx.InnerHeight(24); got != 24-BorderSize {
		t.Errorf("InnerHeight(24) = %d", got)
	}
}

func TestViewContext_Log(t *testing.T) {
	ctx := GetViewContext()

	// Should not panic when logging
	ctx.Log("test message", "n", 42)
}

func TestViewContext_ConcurrentAccess(t *testing.T) {
	ctx := GetViewContext()

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx.UpdateTerminalSize(80+n, 24+n)
			_ = ctx.InnerWidth(40)
			_ = ctx.InnerHeight(20)
		}(i)
	}
	wg.Wait()
}
