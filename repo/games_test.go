package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
)

func TestAddGame(t *testing.T) {
	r := newTestRepo(t)
	id := addTestGame(t, r, "My Game", "Alice")
	g, err := r.Game(id)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "My Game", g.Title)
	assert.Equal(t, "Alice", g.Author)
	assert.Equal(t, "alice", g.AuthorKey)
	assert.Zero(t, g.Downloads)
	assert.Empty(t, g.Likes)
	assert.Empty(t, g.Dislikes)
	assert.NotZero(t, g.Created)

	// Both uploads must exist under the data dir
	for _, p := range []string{g.Image, g.File} {
		if _, err := os.Stat(filepath.Join(r.dir, p)); err != nil {
			t.Errorf("Stored file %s missing - %v", p, err)
		}
	}
}

func TestAddGameBoundaries(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.AddGame(strings.Repeat("t", 31), "Alice", "desc", "png", "newtrobat",
		strings.NewReader("i"), strings.NewReader("f"))
	var ve domain.ValidationError
	assert.ErrorAs(t, err, &ve, "31 char title must be rejected")

	_, err = r.AddGame("ok", "Alice", strings.Repeat("d", 501), "png", "newtrobat",
		strings.NewReader("i"), strings.NewReader("f"))
	assert.ErrorAs(t, err, &ve, "501 char description must be rejected")

	id, err := r.AddGame(strings.Repeat("t", 30), "Alice", strings.Repeat("d", 500), "png", "newtrobat",
		strings.NewReader("i"), strings.NewReader("f"))
	assert.NoError(t, err, "Exact boundary lengths must be accepted")
	assert.NotEmpty(t, id)
}

func TestAddGameEmptyUpload(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.AddGame("ok", "Alice", "desc", "png", "newtrobat",
		strings.NewReader(""), strings.NewReader("f"))
	var ve domain.ValidationError
	assert.ErrorAs(t, err, &ve, "Empty cover image must be rejected")
	entries, _ := os.ReadDir(filepath.Join(r.dir, imagesDir))
	assert.Empty(t, entries, "No file should be left behind")
}

func TestDescriptionEscaping(t *testing.T) {
	r := newTestRepo(t)
	id, err := r.AddGame("Escaped", "Alice", `<script>alert("x")</script>`, "png", "newtrobat",
		strings.NewReader("i"), strings.NewReader("f"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Game(id)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotContains(t, g.Description, "<script>", "Description must be stored escaped")
	assert.Contains(t, g.Description, "&lt;script&gt;")
}

func TestVoteStateMachine(t *testing.T) {
	r := newTestRepo(t)
	id := addTestGame(t, r, "Votable", "Alice")

	// Neutral -> Liked
	res, err := r.Vote(id, "Bob", domain.ActionLike)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, 0, res.Dislikes)
	assert.Equal(t, domain.VoteLiked, res.State)

	// Liked -> Neutral (same vote again removes it)
	res, err = r.Vote(id, "BOB", domain.ActionLike)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, res.Likes)
	assert.Equal(t, domain.VoteNeutral, res.State)

	// Neutral -> Liked -> Disliked in one call, no intermediate neutral stored
	if _, err = r.Vote(id, "bob", domain.ActionLike); err != nil {
		t.Fatal(err)
	}
	res, err = r.Vote(id, "bob", domain.ActionDislike)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, res.Likes)
	assert.Equal(t, 1, res.Dislikes)
	assert.Equal(t, domain.VoteDisliked, res.State)

	// Disliked -> Liked
	res, err = r.Vote(id, "bob", domain.ActionLike)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, 0, res.Dislikes)
	assert.Equal(t, domain.VoteLiked, res.State)

	g, err := r.Game(id)
	if err != nil {
		t.Fatal(err)
	}
	assert.EqualValues(t, []string{"bob"}, g.Likes, "Votes are stored lowercased")
	assert.Empty(t, g.Dislikes, "A login is never in both sets")
}

func TestVoteUnknownGame(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Vote("game_missing", "bob", domain.ActionLike)
	assert.Equal(t, ErrNotFound, err)
}

func TestIncrementDownloads(t *testing.T) {
	r := newTestRepo(t)
	id := addTestGame(t, r, "Counted", "Alice")
	n, err := r.IncrementDownloads(id)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = r.IncrementDownloads(id)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = r.IncrementDownloads("game_missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestDeleteGame(t *testing.T) {
	r := newTestRepo(t)
	id := addTestGame(t, r, "Doomed", "Alice")
	g, err := r.Game(id)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = r.AddComment(id, "bob", "nice"); err != nil {
		t.Fatal(err)
	}
	if err = r.RecordDownload(id, "bob"); err != nil {
		t.Fatal(err)
	}

	if err = r.DeleteGame(id); err != nil {
		t.Fatal(err)
	}
	_, err = r.Game(id)
	assert.Equal(t, ErrNotFound, err)
	for _, p := range []string{g.Image, g.File} {
		_, err = os.Stat(filepath.Join(r.dir, p))
		assert.True(t, os.IsNotExist(err), "Stored file %s should be gone", p)
	}
	_, err = os.Stat(r.commentPath(id))
	assert.True(t, os.IsNotExist(err), "Comment log should be gone")
	assert.NotContains(t, r.DownloadLog(), id, "Ledger entry should be pruned")

	assert.Equal(t, ErrNotFound, r.DeleteGame(id), "Second delete should not find the game")
}

func TestDeleteGamePartialLedgerPrune(t *testing.T) {
	r := newTestRepo(t)
	id := addTestGame(t, r, "Sticky", "Alice")
	if err := r.RecordDownload(id, "bob"); err != nil {
		t.Fatal(err)
	}
	// Point the ledger lock into a missing directory so the prune save fails
	r.ledger.flk = flock.New(filepath.Join(r.dir, "missing", "ledger.lock"))

	assert.Equal(t, ErrPartial, r.DeleteGame(id), "A failed ledger prune must not look successful")
	_, err := r.Game(id)
	assert.Equal(t, ErrNotFound, err, "The record deletion itself must stick")
}
