package routes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	public := []string{"/", "/login", "/signup"}
	for _, path := range public {
		require.Equal(t, Public, Classify(path), path)
	}

	protected := []string{
		"/dashboard",
		"/dashboard/food",
		"/dashboard/social",
		"/dashboard/leaderboard",
		"/dashboard/settings",
		"/data/feed",
		"/logout",
		// Unknown paths fail closed.
		"/totally-new-page",
		"/login/extra",
	}
	for _, path := range protected {
		require.Equal(t, Protected, Classify(path), path)
	}
}

func TestSafeReturnTarget(t *testing.T) {
	t.Parallel()

	require.True(t, SafeReturnTarget("/dashboard"))
	require.True(t, SafeReturnTarget("/dashboard/social"))

	require.False(t, SafeReturnTarget(""))
	require.False(t, SafeReturnTarget("dashboard"))
	require.False(t, SafeReturnTarget("https://evil.example/phish"))
	// Protocol-relative URLs are not local paths.
	require.False(t, SafeReturnTarget("//evil.example"))
	// Public pages are never a sensible post-login destination.
	require.False(t, SafeReturnTarget("/login"))
	require.False(t, SafeReturnTarget("/"))
}
