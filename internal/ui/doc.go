// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders a [tasks.Controller] in two views:
//  1. [CatalogView] : Categories with completion counts; expanded categories list their courses
//  2. [CourseView] : Details and the embeddable video URL of the active course
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Controller events flow through a channel and trigger a re-read of the controller snapshot, so the delayed remote
// connection and background status writes show up without user input.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, c, o, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
