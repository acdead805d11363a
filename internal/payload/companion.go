// Package payload names and fetches the binary companion artifacts that
// loaded modules need to finish their own initialization.
package payload

import "strings"

const (
	moduleSuffix    = ".js"
	companionSuffix = "_bg.wasm"
)

// CompanionName derives the payload identifier for a module identifier by
// replacing the first occurrence of ".js" with "_bg.wasm".
//
// The identifier is returned unchanged when it does not contain the source
// suffix; callers treat that as an accepted edge case, not an error.
func CompanionName(moduleID string) string {
	return strings.Replace(moduleID, moduleSuffix, companionSuffix, 1)
}
