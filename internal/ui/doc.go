// Package ui provides the user interface components for the Legal IA TUI.
//
// # Overview
//
// The ui package implements the visual components of Legal IA using the
// Bubble Tea framework and Lipgloss styling library. Components never own
// conversation state: the chat panel renders a session.Snapshot handed to it
// by the app model.
//
// # Layout System
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├─────────────────┬───────────────────────────────────┤
//	│                 │                                   │
//	│   Modes         │         Chat Panel                │
//	│   (1/4 width)   │                                   │
//	│                 ├───────────────────────────────────┤
//	│                 │         Input                     │
//	├─────────────────┴───────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
//
// Header: Application title with a gradient, the active mode and the model.
//
// Footer: Context-aware key bindings, transient flash messages and the
// legal disclaimer.
//
// Sidebar: The consultation modes. The active mode is marked, and shows a
// spinner while an answer is pending.
//
// Chat: The conversation viewport and the input textarea. Assistant answers
// are rendered as markdown with syntax-highlighted code blocks.
//
// # Focus System
//
// Tab toggles focus between the mode list and the chat. The 'q' key only
// quits when the mode list is focused, so it can be typed in the chat.
package ui
