// Package ui renders terminal output for the CLI with lipgloss and bubbletea.
//
//   - [ProgressBar] and [RenderImportProgress] draw the import progress line (count, percentage, ETA)
//   - [RenderRunCounts] draws the import summary
//   - [Confirm] runs a [ConfirmModel] that only accepts the typed word "yes" before destructive actions
//   - [Model] browses an exported library: [PlaylistListView] lists the saved songs and each playlist,
//     [SongListView] shows the songs of one section with their mapped track id or "unmatched"
//
// The browser implements bubbletea/Elm's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
