// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // relative motion for EventMouseMove
	DeltaY int
	Wheel  int // ticks, positive away from the user
	Button uint8
}

// Input handles all input processing.
type Input struct {
	events []Event
	keys   []uint8
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			typ := EventKeyUp
			if e.Type == sdl.KEYDOWN {
				typ = EventKeyDown
			}
			i.events = append(i.events, Event{Type: typ, Key: e.Keysym.Scancode})

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				DeltaX: int(e.XRel),
				DeltaY: int(e.YRel),
				Button: buttonFromState(e.State),
			})

		case *sdl.MouseButtonEvent:
			typ := EventMouseUp
			if e.Type == sdl.MOUSEBUTTONDOWN {
				typ = EventMouseDown
			}
			i.events = append(i.events, Event{
				Type:   typ,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			ticks := int(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				ticks = -ticks
			}
			if ticks != 0 {
				mx, my, _ := sdl.GetMouseState()
				i.events = append(i.events, Event{
					Type:   EventMouseWheel,
					Wheel:  ticks,
					MouseX: int(mx),
					MouseY: int(my),
				})
			}
		}
	}

	i.keys = sdl.GetKeyboardState()
	return quit
}

// buttonFromState returns the lowest held button in an SDL motion state mask.
func buttonFromState(state uint32) uint8 {
	for b := uint8(1); b <= 5; b++ {
		if state&(1<<(b-1)) != 0 {
			return b
		}
	}
	return 0
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is down as of the last Update.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return int(scancode) < len(i.keys) && i.keys[scancode] != 0
}
