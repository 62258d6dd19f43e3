package repo

import (
	"strings"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/util"
	log "github.com/sirupsen/logrus"
)

// DeleteUser removes a user and everything that depends on them: their
// games (each with files, comments and ledger entries), their comments on
// other games, their ledger memberships, their votes and finally the user
// record. The cascade is best effort - a failed step is logged and the
// remaining steps still run, but the overall result is ErrPartial when
// anything went wrong. There is no rollback.
func (r *Repo) DeleteUser(login string) error {
	key := strings.ToLower(strings.TrimSpace(login))
	if key == "" {
		return ErrNotFound
	}
	if conf.IsAdmin(key) {
		return ErrProtected
	}
	if _, ok := r.users.load()[key]; !ok {
		return ErrNotFound
	}
	log.Infof("Deleting user %s and all dependent records", key)
	failed := false

	// Authored games first, each one cascades to its own files/comments/ledger
	for id, g := range r.games.load() {
		if g.AuthorKey != key {
			continue
		}
		if err := r.DeleteGame(id); err != nil {
			failed = true
			log.WithError(err).Errorf("Failed deleting game %s while deleting user %s", id, key)
		}
	}

	// The user's comments on the remaining games
	for id := range r.games.load() {
		comments, err := r.Comments(id)
		if err != nil {
			failed = true
			log.WithError(err).Errorf("Failed listing comments of game %s while deleting user %s", id, key)
			continue
		}
		for _, c := range comments {
			if strings.ToLower(c.Author) != key {
				continue
			}
			if err = r.DeleteComment(id, c.ID); err != nil {
				failed = true
				log.WithError(err).Errorf("Failed deleting comment %s on game %s while deleting user %s", c.ID, id, key)
			}
		}
	}

	// Ledger memberships, dropping entries that become empty
	ledger := r.ledger.load()
	changed := false
	for id, logins := range ledger {
		if !util.In(logins, key) {
			continue
		}
		changed = true
		remaining := util.Remove(logins, key)
		if len(remaining) == 0 {
			delete(ledger, id)
		} else {
			ledger[id] = remaining
		}
	}
	if changed {
		if err := r.ledger.save(ledger); err != nil {
			failed = true
			log.WithError(err).Errorf("Failed saving download log while deleting user %s", key)
		}
	}

	// Votes on the remaining games
	games := r.games.load()
	changed = false
	for id, g := range games {
		if util.In(g.Likes, key) {
			g.Likes = util.Remove(g.Likes, key)
			changed = true
		}
		if util.In(g.Dislikes, key) {
			g.Dislikes = util.Remove(g.Dislikes, key)
			changed = true
		}
		games[id] = g
	}
	if changed {
		if err := r.games.save(games); err != nil {
			failed = true
			log.WithError(err).Errorf("Failed saving games after vote removal while deleting user %s", key)
		}
	}

	// The user record itself
	users := r.users.load()
	if _, ok := users[key]; ok {
		delete(users, key)
		if err := r.users.save(users); err != nil {
			failed = true
			log.WithError(err).Errorf("Failed saving users after deleting %s", key)
		}
	} else {
		log.Warnf("User %s disappeared before the final delete step", key)
	}

	if failed {
		return ErrPartial
	}
	return nil
}
