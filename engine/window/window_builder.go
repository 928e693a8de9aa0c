package window

// WindowBuilderOption is a functional option for configuring a previewWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *previewWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *previewWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *previewWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *previewWindow) {
		w.height = height
	}
}

// WithResizable controls whether the user can resize the window.
// Defaults to true.
//
// Parameters:
//   - resizable: if false, the window size is fixed
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *previewWindow) {
		w.resizable = resizable
	}
}
