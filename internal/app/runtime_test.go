package app

import "testing"

func TestRefreshTestModePicksUpEnvChanges(t *testing.T) {
	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	if InTestMode() {
		t.Fatal("test mode must be off when the flag is unset")
	}

	t.Setenv(testModeEnv, "1")
	// InTestMode caches the first read; only an explicit refresh may flip it.
	if InTestMode() {
		t.Fatal("cached flag must not change without a refresh")
	}
	RefreshTestMode()
	if !InTestMode() {
		t.Fatal("refresh must pick up the new flag value")
	}

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	if InTestMode() {
		t.Fatal("refresh must also clear the flag")
	}
}
