package repo

import (
	"os"
	"strings"
	"testing"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/stretchr/testify/assert"
)

func newTestRepo(t *testing.T) *Repo {
	conf.Default()
	conf.Options.Dir = t.TempDir()
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func addTestGame(t *testing.T, r *Repo, title, author string) string {
	id, err := r.AddGame(title, author, "A small game", "png", "newtrobat",
		strings.NewReader("not-really-a-png"), strings.NewReader("project-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestCollectionLoadMissing(t *testing.T) {
	r := newTestRepo(t)
	assert.Empty(t, r.users.load(), "Missing file should load as empty mapping")
	assert.Empty(t, r.games.load())
}

func TestCollectionRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	u := domain.User{Login: "MixedCase", Email: "Mixed@Acme.COM"}
	err := r.users.save(map[string]domain.User{"MixedCase": u})
	if err != nil {
		t.Fatal(err)
	}
	loaded := r.users.load()
	got, ok := loaded["mixedcase"]
	if !ok {
		t.Fatalf("Save did not normalize the lookup key - %v", loaded)
	}
	assert.Equal(t, "MixedCase", got.Login, "Display login should keep its case")
	assert.Equal(t, "mixed@acme.com", got.Email, "Stored email should be lowercased")
}

func TestCollectionCorruptFile(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(r.users.path, []byte("not json"), 0664); err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, r.users.load(), "Corrupt file should load as empty mapping")
}

func TestNewID(t *testing.T) {
	id := newID("game")
	assert.True(t, strings.HasPrefix(id, "game_"))
	assert.True(t, safeID(id), "Generated ids must stay in the safe charset")
	assert.NotEqual(t, id, newID("game"))
	assert.False(t, safeID("../escape"))
	assert.False(t, safeID(""))
}
