// Package viz hosts the simulation in a terminal using Bubble Tea.
//
// The diagram is drawn by the shared render pipeline onto a braille [Canvas],
// so each cell shows 2x4 dots. Lipgloss styles the header, the speed bar and
// the detail modal shown while a body is inspected.
//
// # Key Bindings
//
//	Click  - Follow a body, click it again for details
//	Wheel  - Zoom
//	Space  - Pause/Resume
//	R      - Reset view
//	+/-    - Speed
//	T      - Cycle color themes
//	Enter  - Close the detail modal
//	?      - Show help
package viz
