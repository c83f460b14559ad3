package server

import (
	"net/http"
	"strings"
)

// allowedOrigins is the fixed allow-list of client origins. Anything else is
// admitted only via the localhost or hosting-suffix rules below.
var allowedOrigins = []string{
	"https://istock-app.web.app",
	"https://istock-app.firebaseapp.com",
	"http://localhost:5173",
	"http://localhost:3000",
}

// hostingSuffixes admit any site deployed on the managed hosting platform,
// including preview channels.
var hostingSuffixes = []string{
	".web.app",
	".firebaseapp.com",
}

const (
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
	corsMaxAge   = "3600"
)

// resolveOrigin decides which Access-Control-Allow-Origin value a request
// gets. Returns ("", false) when the origin is present but not allowed, and
// ("*", true) when no Origin header was sent at all.
func resolveOrigin(origin string) (string, bool) {
	if origin == "" {
		return "*", true
	}
	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return origin, true
		}
	}
	if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
		return origin, true
	}
	for _, suffix := range hostingSuffixes {
		if strings.HasSuffix(origin, suffix) {
			return origin, true
		}
	}
	return "", false
}

// applyCORS sets the access-control headers for the request's origin and
// reports whether the origin was acceptable. Preflight requests are answered
// in full here; unrecognized origins on a preflight get a 204 without an
// allow header (the browser rejects the cross-origin call on its own), while
// real requests from them must be stopped by the caller.
func applyCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	resolved, ok := resolveOrigin(origin)

	h := w.Header()
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Max-Age", corsMaxAge)

	if ok {
		h.Set("Access-Control-Allow-Origin", resolved)
		if resolved != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	return ok
}
