// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"bookwright-cli/internal/selfupdate"
)

// releaseServer serves a minimal latest-release document and records
// whether any asset download was attempted.
func releaseServer(t *testing.T, tag string) (*httptest.Server, *bool) {
	t.Helper()

	downloaded := false
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/bookwright/bookwright/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","assets":[]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		downloaded = true
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &downloaded
}

func testUpdater(t *testing.T, current, remoteTag string) (*selfupdate.Updater, *bool) {
	t.Helper()
	srv, downloaded := releaseServer(t, remoteTag)
	client := selfupdate.NewClient(selfupdate.WithBaseURL(srv.URL))
	return selfupdate.NewUpdater(current, selfupdate.WithClient(client)), downloaded
}

func TestRunUpgradeUpToDate(t *testing.T) {
	t.Parallel()

	updater, _ := testUpdater(t, "2.0.0", "v1.9.9")
	var out bytes.Buffer

	err := runUpgrade(context.Background(), upgradeParams{stdout: &out, updater: updater, yes: true})
	if err != nil {
		t.Fatalf("runUpgrade: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("output = %q, want an up-to-date notice", out.String())
	}
}

func TestRunUpgradeCheckOnly(t *testing.T) {
	t.Parallel()

	updater, downloaded := testUpdater(t, "1.1.9", "v1.2")
	var out bytes.Buffer

	err := runUpgrade(context.Background(), upgradeParams{stdout: &out, updater: updater, check: true})
	if err != nil {
		t.Fatalf("runUpgrade: %v", err)
	}
	if !strings.Contains(out.String(), "1.2 is available") {
		t.Errorf("output = %q, want availability notice", out.String())
	}
	if *downloaded {
		t.Error("--check must not download anything")
	}
}

func TestUpdateRestartArgs(t *testing.T) {
	t.Parallel()

	// The re-invocation after --update passes os.Args[1:] through
	// StripUpdateFlag; Restart supplies the program name itself. The
	// reconstructed argument list must resolve cleanly on the root
	// command, with no duplicated program name and no update flag left.
	child := selfupdate.StripUpdateFlag([]string{"--update", "--module", "writer"}, "--update")
	if want := []string{"--module", "writer"}; !slices.Equal(child, want) {
		t.Fatalf("child args = %v, want %v", child, want)
	}

	cmd, _, err := rootCmd.Find(child)
	if err != nil {
		t.Fatalf("Find(%v): %v", child, err)
	}
	if cmd != rootCmd {
		t.Errorf("Find resolved to %q, want the root command", cmd.Name())
	}
}

func TestRunSelfUpdateRecoversInvalidPayload(t *testing.T) {
	t.Parallel()

	// A release without a binary asset for this platform fails payload
	// validation. That aborts the update, not the run: the wizard
	// continues under the current version.
	updater, _ := testUpdater(t, "1.0.0", "v9.9.9")
	var out, errOut bytes.Buffer

	p := upgradeParams{stdout: &out, updater: updater, yes: true, restart: true}
	resume, err := runSelfUpdate(context.Background(), p, &errOut)
	if err != nil {
		t.Fatalf("runSelfUpdate: %v", err)
	}
	if !resume {
		t.Error("resume = false, want the wizard to continue")
	}
	if !strings.Contains(errOut.String(), "continuing with the current version") {
		t.Errorf("stderr = %q, want the recovery warning", errOut.String())
	}
}

func TestRunUpgradeDeclined(t *testing.T) {
	t.Parallel()

	updater, downloaded := testUpdater(t, "1.0.0", "v2.0.0")
	var out bytes.Buffer

	p := upgradeParams{
		stdout:  &out,
		updater: updater,
		confirm: func(string, bool) (bool, error) { return false, nil },
	}
	err := runUpgrade(context.Background(), p)
	if err != nil {
		t.Fatalf("runUpgrade: %v", err)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("output = %q, want a cancellation notice", out.String())
	}
	if *downloaded {
		t.Error("a declined upgrade must not download anything")
	}
}
