// Package ci provides the CI status backends feeding the list pipeline's
// ci_status field and the CI cache (spec component K). Two modes share one
// Provider interface: the default shellout backend (gh/glab CLI, grounded
// on the teacher's internal/forge detection and exec pattern) and a
// library-mode backend (go-github / gitlab client-go) selected by
// ci.mode = "api" in the user config.
package ci
