package treebloom

// syntheticEvent is a single injected input event: a pointer position in
// screen pixels, a gesture, or both. Events are consumed one per frame.
type syntheticEvent struct {
	pointer          bool
	screenX, screenY float64
	pressed          bool

	gesture    bool
	gestureVal Gesture
}

// InjectPointer queues a pointer move to the given screen coordinates with
// no button held. It is applied on the next Update.
func (s *Scene) InjectPointer(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		pointer: true, screenX: x, screenY: y,
	})
}

// InjectDrag queues a drag from (fromX, fromY) to (toX, toY): a press,
// frames-2 interpolated moves and a release. Minimum frames is 2.
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		pointer: true, screenX: fromX, screenY: fromY, pressed: true,
	})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.injectQueue = append(s.injectQueue, syntheticEvent{
			pointer: true,
			screenX: fromX + (toX-fromX)*t,
			screenY: fromY + (toY-fromY)*t,
			pressed: true,
		})
	}
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		pointer: true, screenX: toX, screenY: toY,
	})
}

// InjectGesture queues a gesture as if the recognizer had accepted it. It
// replaces the bridge's latest gesture on the next Update, even when the
// tracker is degraded.
func (s *Scene) InjectGesture(g Gesture) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{gesture: true, gestureVal: g})
}

// Injecting reports whether injected events are waiting or a test script
// is attached; the game loop skips real input while either holds.
func (s *Scene) Injecting() bool {
	return len(s.injectQueue) > 0 || (s.testRunner != nil && !s.testRunner.Done())
}

// processInjected pops one event from the inject queue and applies it.
// Returns true if an event was consumed.
func (s *Scene) processInjected() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.gesture {
		s.bridge.set(evt.gestureVal)
	}
	if evt.pointer {
		s.processPointer(evt.screenX, evt.screenY, evt.pressed)
	}
	return true
}
