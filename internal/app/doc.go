// Package app wires the modhost daemon together: configuration, logging,
// payload store, progress gateway, module registry, and the worker host.
package app
