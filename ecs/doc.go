// Package ecs provides ECS adapters for treebloom's phase events.
//
// The primary adapter is [NewDonburiStore], which publishes every phase
// change of a Scene into a [Donburi] world as a typed event and keeps a
// singleton [PhaseState] entity current. Subscribe to [PhaseEventType] in
// your ECS systems to react to blooms and collapses.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
