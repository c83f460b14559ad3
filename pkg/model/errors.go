package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures at the point they occur so the HTTP layer can
// pick a status code without re-parsing message text.
var (
	// TagBadRequest marks malformed or out-of-bounds client input.
	TagBadRequest = goerr.NewTag("bad_request")

	// TagUnauthorized marks a missing or invalid ID token.
	TagUnauthorized = goerr.NewTag("unauthorized")

	// TagConfig marks missing or unresolvable gateway configuration.
	TagConfig = goerr.NewTag("config")

	// TagNetwork marks an unreachable or transiently failing upstream service.
	TagNetwork = goerr.NewTag("upstream_network")

	// TagPermission marks an upstream permission failure.
	TagPermission = goerr.NewTag("upstream_permission")

	// TagNotFound marks an upstream resource that does not exist.
	TagNotFound = goerr.NewTag("upstream_not_found")
)
