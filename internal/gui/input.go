package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/orrery/internal/gui/controls"
	"github.com/san-kum/orrery/internal/orbit"
)

var keymap = map[int32]controls.Key{
	rl.KeySpace:      controls.KeyPause,
	rl.KeyR:          controls.KeyReset,
	rl.KeyEqual:      controls.KeyFaster,
	rl.KeyKpAdd:      controls.KeyFaster,
	rl.KeyMinus:      controls.KeySlower,
	rl.KeyKpSubtract: controls.KeySlower,
	rl.KeyS:          controls.KeySnapshot,
	rl.KeyEnter:      controls.KeyDismiss,
	rl.KeyKpEnter:    controls.KeyDismiss,
	rl.KeyEscape:     controls.KeyDismiss,
	rl.KeyH:          controls.KeyHelp,
	rl.KeyM:          controls.KeyAudio,
	rl.KeyQ:          controls.KeyQuit,
}

func poll() controls.Input {
	in := controls.Input{
		Mouse:   orbit.Vec2{X: float64(rl.GetMouseX()), Y: float64(rl.GetMouseY())},
		Click:   rl.IsMouseButtonPressed(rl.MouseLeftButton),
		Wheel:   float64(rl.GetMouseWheelMove()),
		Resized: rl.IsWindowResized(),
		Width:   rl.GetScreenWidth(),
		Height:  rl.GetScreenHeight(),
		Pressed: make(map[controls.Key]bool),
	}
	d := rl.GetMouseDelta()
	in.Moved = d.X != 0 || d.Y != 0
	for code, k := range keymap {
		if rl.IsKeyPressed(code) {
			in.Pressed[k] = true
		}
	}
	return in
}
