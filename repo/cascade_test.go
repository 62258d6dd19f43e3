package repo

import (
	"os"
	"testing"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/stretchr/testify/assert"
)

func TestDeleteUserCascade(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register("carol", "c@x.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("dave", "d@x.com", "secret"); err != nil {
		t.Fatal(err)
	}
	p1 := addTestGame(t, r, "Carols Game", "Carol")
	p2 := addTestGame(t, r, "Daves Game", "Dave")
	c1, err := r.AddComment(p2, "carol", "neat")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = r.AddComment(p2, "dave", "thanks"); err != nil {
		t.Fatal(err)
	}
	if _, err = r.Vote(p2, "carol", domain.ActionLike); err != nil {
		t.Fatal(err)
	}
	if err = r.RecordDownload(p2, "carol"); err != nil {
		t.Fatal(err)
	}
	if err = r.RecordDownload(p1, "dave"); err != nil {
		t.Fatal(err)
	}

	if err = r.DeleteUser("Carol"); err != nil {
		t.Fatal(err)
	}

	// P1 and everything it owned is gone
	_, err = r.Game(p1)
	assert.Equal(t, ErrNotFound, err)
	_, err = os.Stat(r.commentPath(p1))
	assert.True(t, os.IsNotExist(err))

	// Carol's traces on P2 are gone, Dave's remain
	comments, err := r.Comments(p2)
	assert.NoError(t, err)
	if assert.Len(t, comments, 1) {
		assert.NotEqual(t, c1, comments[0].ID)
		assert.Equal(t, "dave", comments[0].Author)
	}
	g, err := r.Game(p2)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotContains(t, g.Likes, "carol")
	assert.NotContains(t, r.DownloadLog(), p2, "Empty ledger entries are dropped")

	// The user record itself is gone
	_, err = r.User("carol")
	assert.Equal(t, ErrNotFound, err)
	_, err = r.User("dave")
	assert.NoError(t, err)
}

func TestDeleteUserProtectsAdmins(t *testing.T) {
	r := newTestRepo(t)
	assert.Equal(t, ErrProtected, r.DeleteUser("jojo_kent"))
	assert.Equal(t, ErrProtected, r.DeleteUser("TVFXSquad"))
}

func TestDeleteUnknownUser(t *testing.T) {
	r := newTestRepo(t)
	assert.Equal(t, ErrNotFound, r.DeleteUser("nobody"))
	assert.Equal(t, ErrNotFound, r.DeleteUser("  "))
}
