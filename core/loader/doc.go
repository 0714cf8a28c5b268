// Package loader provides the feature loading system.
//
// Each HTTP module (webhooks, actions, ledger) implements Feature and is registered
// with a Manager; LoadAll mounts the enabled ones on the Fiber app in registration
// order.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// A feature reports itself disabled when a dependency it needs was not configured,
// so the server still starts with the routes that can work.
package loader
