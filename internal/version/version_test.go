package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b") {
		t.Errorf("Version must be plain text, got %q", Version)
	}
}

func TestCollect(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version = " 1.2.3 "
	GitCommit = "abc123def456"
	BuildDate = ""

	info := Collect(Fields{Hash: true, Date: true})
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "unknown" || info.GitMessage != "" {
		t.Fatalf("info = %+v", info)
	}

	Version = ""
	if got := Collect(Fields{}).Version; got != "dev" {
		t.Fatalf("empty version collected as %q", got)
	}
}

func TestPretty(t *testing.T) {
	info := Info{Tool: "kymera", Version: "1.2.3-rc.1", Tagline: Tagline, GitCommit: "abc"}

	var buf bytes.Buffer
	Pretty(&buf, info, Fields{Hash: true}, false)
	want := "kymera 1.2.3-rc.1: " + Tagline + "\ncommit:  abc\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	Pretty(&buf, info, Fields{}, true)
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, "\x1b[") || !strings.HasSuffix(first, "-rc.1: "+Tagline) {
		t.Fatalf("colored line = %q", first)
	}
	if !strings.Contains(buf.String(), "--full") {
		t.Fatal("missing hint about optional fields")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, Info{Tool: "kymera", Version: "0.1.0"}); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["git_commit"]; ok || got["version"] != "0.1.0" {
		t.Fatalf("payload = %v", got)
	}
}
