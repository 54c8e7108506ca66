package source

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spachava753/jumpstart/internal/logcapture"
	"github.com/spachava753/jumpstart/internal/models"
)

type fakeCloner struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeCloner) Clone(_ context.Context, logger *slog.Logger, repoURL, ref, dest string) error {
	f.calls++
	logger.Info("fake clone", "url", repoURL, "ref", ref)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for name, content := range f.files {
		p := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	return f.err
}

func remoteJumpstart() models.Jumpstart {
	return models.Jumpstart{
		ID:        3,
		LogicalID: "analytics-lab",
		Source: models.Source{
			WorkspacePath: "/workspace",
			RepoURL:       "https://example.com/lab.git",
			RepoRef:       "main",
		},
	}
}

func TestMaterialize_Remote(t *testing.T) {
	tmp := t.TempDir()
	cloner := &fakeCloner{files: map[string]string{
		"workspace/Notebook1.Notebook/notebook-content.py": "print(1)",
	}}
	m := &Materializer{TempDir: tmp, Cloner: cloner}

	wd, err := m.Materialize(context.Background(), remoteJumpstart(), nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer wd.Close()

	if !strings.HasPrefix(filepath.Base(wd.Root), "js3_al__") {
		t.Errorf("expected working dir named with system prefix, got %s", wd.Root)
	}
	if wd.ItemsDir != filepath.Join(wd.Root, "workspace") {
		t.Errorf("unexpected items dir %s", wd.ItemsDir)
	}
	if _, err := os.Stat(filepath.Join(wd.ItemsDir, "Notebook1.Notebook", "notebook-content.py")); err != nil {
		t.Errorf("expected cloned file: %v", err)
	}

	if err := wd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(wd.Root); !os.IsNotExist(err) {
		t.Error("expected working dir to be removed")
	}
	if err := wd.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestMaterialize_LogsToCallerLogger(t *testing.T) {
	cloner := &fakeCloner{files: map[string]string{"workspace/A.Notebook/x.py": "x"}}
	m := &Materializer{TempDir: t.TempDir(), Cloner: cloner}
	buf := logcapture.NewBuffer(slog.LevelDebug)

	wd, err := m.Materialize(context.Background(), remoteJumpstart(), slog.New(buf.Handler()))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	wd.Close()

	var msgs []string
	for _, e := range buf.Entries() {
		msgs = append(msgs, e.Message)
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{"fake clone", "materialized source", "removing working directory"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in captured log:\n%s", want, joined)
		}
	}
}

func TestMaterialize_CloneFailureCleansUp(t *testing.T) {
	tmp := t.TempDir()
	cloner := &fakeCloner{files: map[string]string{"partial": "x"}, err: errors.New("exit status 128")}
	m := &Materializer{TempDir: tmp, Cloner: cloner}

	_, err := m.Materialize(context.Background(), remoteJumpstart(), nil)
	var fetchErr *models.SourceFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected SourceFetchError, got %v", err)
	}
	if fetchErr.Ref != "main" {
		t.Errorf("expected ref on error, got %q", fetchErr.Ref)
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("expected partial directory to be removed, found %d entries", len(entries))
	}
}

func TestMaterialize_Local(t *testing.T) {
	bundles := t.TempDir()
	bundle := filepath.Join(bundles, "demo-a", "src", "Report1.Report")
	if err := os.MkdirAll(bundle, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "definition.pbir"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	m := &Materializer{BundlesDir: bundles, TempDir: t.TempDir()}
	j := models.Jumpstart{ID: 1, LogicalID: "demo-a", Source: models.Source{WorkspacePath: "src"}}

	wd, err := m.Materialize(context.Background(), j, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer wd.Close()

	if _, err := os.Stat(filepath.Join(wd.ItemsDir, "Report1.Report", "definition.pbir")); err != nil {
		t.Errorf("expected copied file: %v", err)
	}
	// the bundle itself must be untouched by later renames
	if wd.Root == filepath.Join(bundles, "demo-a") {
		t.Error("working dir must not be the bundle directory")
	}
}

func TestMaterialize_Errors(t *testing.T) {
	tests := []struct {
		name string
		j    models.Jumpstart
	}{
		{"missing bundle", models.Jumpstart{ID: 1, LogicalID: "absent", Source: models.Source{WorkspacePath: "src"}}},
		{"missing workspace path", models.Jumpstart{ID: 1, LogicalID: "demo-a", Source: models.Source{WorkspacePath: "nope"}}},
		{"escaping workspace path", models.Jumpstart{ID: 1, LogicalID: "demo-a", Source: models.Source{WorkspacePath: "../.."}}},
	}

	bundles := t.TempDir()
	if err := os.MkdirAll(filepath.Join(bundles, "demo-a", "src"), 0755); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			m := &Materializer{BundlesDir: bundles, TempDir: tmp}
			_, err := m.Materialize(context.Background(), tt.j, nil)
			var fetchErr *models.SourceFetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected SourceFetchError, got %v", err)
			}
			entries, _ := os.ReadDir(tmp)
			if len(entries) != 0 {
				t.Errorf("expected cleanup, found %d entries", len(entries))
			}
		})
	}
}

func TestContainedPath(t *testing.T) {
	root := filepath.FromSlash("/tmp/root")
	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{"/workspace", filepath.Join(root, "workspace"), false},
		{"a/b", filepath.Join(root, "a", "b"), false},
		{"", root, false},
		{"../x", "", true},
		{"a/../../x", "", true},
	}
	for _, tt := range tests {
		got, err := ContainedPath(root, tt.rel)
		if (err != nil) != tt.wantErr {
			t.Errorf("ContainedPath(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ContainedPath(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

// TestGitCloner exercises the real git CLI against a local repository.
// This test is skipped with -short flag.
func TestGitCloner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping git test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	origin := t.TempDir()
	git := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = origin
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
		return strings.TrimSpace(string(out))
	}
	git("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(origin, "README.md"), []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	git("add", ".")
	git("commit", "-m", "v1")
	sha := git("rev-parse", "HEAD")

	cloner := &GitCloner{}
	ctx := context.Background()

	t.Run("branch", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "clone")
		if err := cloner.Clone(ctx, nil, origin, "main", dest); err != nil {
			t.Fatalf("Clone: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dest, "README.md")); err != nil {
			t.Errorf("expected README.md: %v", err)
		}
	})

	t.Run("commit", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "clone")
		if err := cloner.Clone(ctx, nil, origin, sha, dest); err != nil {
			t.Fatalf("Clone: %v", err)
		}
	})

	t.Run("bad ref", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "clone")
		buf := logcapture.NewBuffer(slog.LevelInfo)
		err := cloner.Clone(ctx, slog.New(buf.Handler()), origin, "no-such-branch", dest)
		if err == nil {
			t.Fatal("expected error for unknown ref")
		}
		if !strings.Contains(err.Error(), "no-such-branch") {
			t.Errorf("expected git's message in error, got %v", err)
		}
		var logged bool
		for _, e := range buf.Entries() {
			if strings.Contains(e.Message, "no-such-branch") {
				logged = true
			}
		}
		if !logged {
			t.Errorf("expected git output in captured log, got %+v", buf.Entries())
		}
	})
}
