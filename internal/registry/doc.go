// Package registry provides the central "glue" for the module system.
//
// The Registry maps the module identifiers used in invocation parameters
// (e.g. "./ahmetkayaify.js") to factories of the common loadable-module
// interface. Resolving an identifier through the registry is the in-process
// equivalent of a runtime dynamic import: the caller names a module by
// string and gets back a ready-to-initialize implementation, without
// knowing which runtime (native, wasm, interpreted) backs it.
//
// The registry is populated during application startup and then validated
// against the worker configuration, so a worker that names an unregistered
// module fails at startup rather than mid-run.
package registry
