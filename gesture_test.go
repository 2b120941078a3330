package treebloom

import (
	"sync"
	"testing"
)

func TestGestureSampleThreshold(t *testing.T) {
	tests := []struct {
		conf float64
		want Gesture
	}{
		{0.3, GestureNone},
		{0.5, GestureNone},
		{0.51, GestureOpenPalm},
		{0.99, GestureOpenPalm},
	}
	for _, tt := range tests {
		s := GestureSample{Category: GestureOpenPalm, Confidence: tt.conf}
		if got := s.Accepted(); got != tt.want {
			t.Errorf("Accepted(conf=%.2f) = %v, want %v", tt.conf, got, tt.want)
		}
	}
}

func TestGestureBridgeAcceptTopOnly(t *testing.T) {
	var b GestureBridge
	got := b.Accept([]GestureSample{
		{Category: GestureClosedFist, Confidence: 0.4},
		{Category: GestureOpenPalm, Confidence: 0.9},
	})
	if got != GestureNone {
		t.Errorf("Accept = %v, want None (top sample below threshold)", got)
	}

	b.Accept([]GestureSample{{Category: GestureClosedFist, Confidence: 0.8}})
	if b.Latest() != GestureClosedFist {
		t.Errorf("Latest = %v, want Closed_Fist", b.Latest())
	}

	b.Accept(nil)
	if b.Latest() != GestureNone {
		t.Errorf("Latest after empty = %v, want None", b.Latest())
	}
}

func TestGestureBridgeDegrade(t *testing.T) {
	var b GestureBridge
	b.Accept([]GestureSample{{Category: GestureOpenPalm, Confidence: 0.9}})
	b.Degrade()
	if !b.Degraded() || b.Latest() != GestureNone {
		t.Fatalf("after Degrade: degraded=%v latest=%v", b.Degraded(), b.Latest())
	}
	b.Accept([]GestureSample{{Category: GestureOpenPalm, Confidence: 0.9}})
	if b.Latest() != GestureNone {
		t.Errorf("degraded bridge accepted %v", b.Latest())
	}
	b.set(GestureOpenPalm)
	if b.Latest() != GestureOpenPalm {
		t.Errorf("set bypass: Latest = %v", b.Latest())
	}
}

func TestGestureBridgeConcurrent(t *testing.T) {
	var b GestureBridge
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Accept([]GestureSample{{Category: GestureOpenPalm, Confidence: 0.9}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if g := b.Latest(); g != GestureNone && g != GestureOpenPalm {
				t.Errorf("torn read: %v", g)
				return
			}
		}
	}()
	wg.Wait()
}

func TestParseGesture(t *testing.T) {
	for _, g := range []Gesture{GestureNone, GestureOpenPalm, GestureClosedFist, GesturePointingUp} {
		if got := ParseGesture(g.String()); got != g {
			t.Errorf("ParseGesture(%q) = %v", g.String(), got)
		}
	}
	if ParseGesture("Thumb_Up") != GestureNone {
		t.Error("unknown category did not map to None")
	}
}
