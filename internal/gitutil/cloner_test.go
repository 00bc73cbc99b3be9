package gitutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initSourceRepo creates a local repository with two commits and returns its
// path plus both commit hashes.
func initSourceRepo(t *testing.T) (string, plumbing.Hash, plumbing.Hash) {
	t.Helper()
	src := t.TempDir()

	repo, err := git.PlainInit(src, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}

	require.NoError(t, os.WriteFile(filepath.Join(src, "main.py"), []byte("print('one')\n"), 0o644))
	_, err = wt.Add("main.py")
	require.NoError(t, err)
	first, err := wt.Commit("first", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(src, "main.py"), []byte("print('two')\n"), 0o644))
	_, err = wt.Add("main.py")
	require.NoError(t, err)
	second, err := wt.Commit("second", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	return src, first, second
}

func TestCloneAndCheckout(t *testing.T) {
	src, first, _ := initSourceRepo(t)
	cloner := NewCloner(slog.New(slog.DiscardHandler))

	path, cleanup, err := cloner.CloneAndCheckout(context.Background(), src, first.String(), "", 0)
	require.NoError(t, err)
	defer cleanup()

	// The checkout reflects the requested commit, not the branch head.
	content, err := os.ReadFile(filepath.Join(path, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('one')\n", string(content))
}

func TestCloneAndCheckoutHead(t *testing.T) {
	src, _, second := initSourceRepo(t)
	cloner := NewCloner(slog.New(slog.DiscardHandler))

	path, cleanup, err := cloner.CloneAndCheckout(context.Background(), src, second.String(), "", 0)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(path, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('two')\n", string(content))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "cleanup removes the checkout")
}

func TestCloneInvalidSource(t *testing.T) {
	cloner := NewCloner(slog.New(slog.DiscardHandler))

	_, _, err := cloner.CloneAndCheckout(context.Background(), filepath.Join(t.TempDir(), "nope"), "", "", 0)
	assert.Error(t, err)
}

func TestAuthFor(t *testing.T) {
	auth, err := authFor("/local/path", "token")
	require.NoError(t, err)
	assert.Nil(t, auth, "local paths need no auth")

	auth, err = authFor("https://github.com/octo/demo.git", "token")
	require.NoError(t, err)
	basic, ok := auth.(*githttp.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "x-access-token", basic.Username)
	assert.Equal(t, "token", basic.Password)

	auth, err = authFor("https://github.com/octo/demo.git", "")
	require.NoError(t, err)
	assert.Nil(t, auth, "anonymous https clone is allowed")

	_, err = authFor("ssh://git@github.com/octo/demo.git", "token")
	assert.Error(t, err)
}
