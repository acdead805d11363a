// Package cli parses modhost's command line into an app.Config.
package cli
