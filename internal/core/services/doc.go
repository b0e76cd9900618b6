// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Only the orchestrator reaches outside the standard library, for
// singleflight and uuid.
package services
