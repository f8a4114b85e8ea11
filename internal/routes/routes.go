// Package routes holds the static classification of every navigable path.
// The public/protected split is the application's command surface and must
// not drift: unclassified paths are protected (fail closed).
package routes

type Class string

const (
	Public    Class = "public"
	Protected Class = "protected"
)

const (
	LoginPath   = "/login"
	SignupPath  = "/signup"
	LandingPath = "/"

	// DefaultAuthenticatedPath is where authenticated users land when they
	// hit a public page or log in without a return target.
	DefaultAuthenticatedPath = "/dashboard"

	// ReturnTargetParam carries the originally requested path through the
	// login redirect.
	ReturnTargetParam = "from"
)

// publicPaths is the complete list of paths reachable without a session.
var publicPaths = map[string]struct{}{
	LandingPath: {},
	LoginPath:   {},
	SignupPath:  {},
}

// Classify returns the classification for a navigable path. Every path is
// classified exactly once; anything not listed is Protected.
func Classify(path string) Class {
	if _, exists := publicPaths[path]; exists {
		return Public
	}
	return Protected
}

// SafeReturnTarget reports whether target may be used as a post-login
// redirect. Only local absolute paths qualify, so the login form cannot be
// turned into an open redirect.
func SafeReturnTarget(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	if len(target) > 1 && target[1] == '/' {
		return false
	}
	return Classify(target) == Protected
}
