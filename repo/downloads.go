package repo

import (
	"strings"

	"github.com/TVFXSquad/NewCatroid-Community-Site/util"
	log "github.com/sirupsen/logrus"
)

// normalizeLedger lowercases and dedups the per-game login lists
func normalizeLedger(m map[string][]string) map[string][]string {
	res := make(map[string][]string, len(m))
	for id, logins := range m {
		res[id] = util.Unique(util.ToLower(logins))
	}
	return res
}

// DownloadLog returns the whole ledger: game id to the logins whose download
// was already counted
func (r *Repo) DownloadLog() map[string][]string {
	return r.ledger.load()
}

// HasDownloaded reports whether this user's download of this game was
// already counted
func (r *Repo) HasDownloaded(id, login string) bool {
	return util.In(r.ledger.load()[id], strings.ToLower(login))
}

// RecordDownload adds the user to the game's ledger entry. It is idempotent:
// recording an already present user is a successful no-op.
func (r *Repo) RecordDownload(id, login string) error {
	key := strings.ToLower(login)
	ledger := r.ledger.load()
	if util.In(ledger[id], key) {
		return nil
	}
	ledger[id] = append(ledger[id], key)
	if err := r.ledger.save(ledger); err != nil {
		log.WithError(err).Errorf("Failed saving download log for game %s user %s", id, key)
		return err
	}
	return nil
}
