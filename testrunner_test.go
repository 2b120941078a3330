package treebloom

import (
	"strings"
	"testing"
)

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name, script, want string
	}{
		{"invalid json", `{`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "jump"}]}`, `unknown action "jump"`},
		{"unknown gesture", `{"steps": [{"action": "gesture", "gesture": "Victory"}]}`, `unknown gesture "Victory"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.script))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadTestScriptNoneGesture(t *testing.T) {
	if _, err := LoadTestScript([]byte(`{"steps": [{"action": "gesture", "gesture": "None"}]}`)); err != nil {
		t.Errorf("None gesture rejected: %v", err)
	}
}

func TestTestRunnerBloomScript(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "gesture", "gesture": "Open_Palm"},
		{"action": "wait", "frames": 200},
		{"action": "screenshot", "label": "nebula"}
	]}`))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	s := NewScene(testSceneConfig())
	s.SetTestRunner(runner)
	if !s.Injecting() {
		t.Error("Injecting = false with a running script")
	}

	for i := 0; i < 300 && !runner.Done(); i++ {
		s.Update(1.0 / 60)
	}
	if !runner.Done() {
		t.Fatal("script did not finish")
	}
	if s.Machine().Phase() != PhaseNebula {
		t.Errorf("phase = %v, want nebula", s.Machine().Phase())
	}
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "nebula" {
		t.Errorf("screenshots = %v, want [nebula]", s.screenshotQueue)
	}
	if s.Injecting() {
		t.Error("Injecting = true after script finished")
	}
}

func TestTestRunnerWaitsForDrag(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 600, "fromY": 360, "toX": 800, "toY": 360, "frames": 10},
		{"action": "reset"}
	]}`))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	s := NewScene(testSceneConfig())
	s.SetTestRunner(runner)

	s.Update(1.0 / 60)
	// The drag is queued and its first event applied; reset must wait.
	if runner.Done() {
		t.Fatal("runner done while drag pending")
	}
	for i := 0; i < 20 && !runner.Done(); i++ {
		s.Update(1.0 / 60)
	}
	if !runner.Done() {
		t.Fatal("script did not finish")
	}
	if s.Camera().Azimuth >= 0 {
		t.Errorf("Azimuth = %f, want negative", s.Camera().Azimuth)
	}
}
