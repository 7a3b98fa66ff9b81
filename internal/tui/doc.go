// Package tui implements the Yatter terminal user interface.
//
// Screens are BubbleTea models behind a small router; the root Model
// owns navigation and cancels a screen's context when it is left.
//
// Component architecture:
//
//	model.go              root model, navigation, size forwarding
//	navigation.go         routes, router and destinations
//	theme.go              centralized color and style definitions
//	header.go             top bar and footer with keyboard hints
//	splash.go             session check on start
//	login.go              username and password form
//	timeline_viewmodel.go timeline state owner
//	timeline.go           timeline list, selection and image loading
//	statusrow.go          one status: avatar, name line, content, media
//	detail.go             full status in the side pane
//	bindingmodel.go       render-ready status values
//	helpers.go            truncation and small math
package tui
