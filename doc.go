// Package treebloom is an interactive 3D greeting card for [Ebitengine]:
// thousands of particles form a Christmas tree that blooms into a nebula of
// photographs and collapses back, driven by hand gestures from a webcam.
//
// # Quick start
//
// The simplest way to show the card is [Run], which creates a window and
// game loop for you:
//
//	scene := treebloom.NewScene(treebloom.DefaultSceneConfig())
//	treebloom.Run(scene, treebloom.RunConfig{
//		Title: "Treebloom", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly. Scene.Update does not touch
// the GPU, so a Scene can also be driven headless and its [Frame] rendered
// elsewhere (see the termview package).
//
// # Phases
//
// A [PhaseMachine] owns the single [Phase] and the shared transition
// progress. An Open_Palm gesture in [PhaseTree] starts [PhaseBlooming],
// which settles into [PhaseNebula] when progress reaches 1. A Closed_Fist
// in the nebula starts [PhaseCollapsing], which settles back into the tree
// at 0. Every other gesture is ignored, as are gestures while a transition
// is in flight.
//
// The [ParticleField] and [OrnamentField] are pure functions of that state:
// each element stores a tree position and a nebula position and is placed
// by interpolating between them. Photos ([PhotoItem]) run their own tweens
// instead, so they can arrive late and settle with an elastic bounce.
//
// # Gestures
//
// A [HandTracker] polls a [CameraDevice] on its own goroutine, hands frames
// to a [Recognizer], and publishes the accepted gesture through the
// [GestureBridge]. The frame loop reads only the latest value. When the
// recognizer cannot be loaded the card keeps running without gestures.
//
// # Settings
//
// [Settings] persist through gdata and can be overridden with TREEBLOOM_*
// environment variables.
//
// [Ebitengine]: https://ebitengine.org
package treebloom
