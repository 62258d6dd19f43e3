// Package repo persists users, games, votes, download records and comments
// as flat serialized files under the configured data directory.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is a not found error if Get does not retrieve a value
	ErrNotFound = errors.New("not_found")
	// ErrLoginTaken is returned when registering an already used login
	ErrLoginTaken = errors.New("login_taken")
	// ErrEmailTaken is returned when registering an already used email
	ErrEmailTaken = errors.New("email_taken")
	// ErrVoteAction is returned for an unknown vote action
	ErrVoteAction = errors.New("invalid_vote_action")
	// ErrProtected is returned when trying to delete an administrator
	ErrProtected = errors.New("protected_user")
	// ErrPartial is returned when a best-effort cascade finished but some steps failed
	ErrPartial = errors.New("completed_with_errors")
)

const (
	usersFile       = "users.json"
	gamesFile       = "games.json"
	downloadLogFile = "download_log.json"
	imagesDir       = "images"
	projectsDir     = "projects"
)

// Repo is the file backed repository. All operations re-read the relevant
// collection from disk and write back the full result - no mutable state is
// cached between two operations.
type Repo struct {
	dir    string
	users  *collection[domain.User]
	games  *collection[domain.Game]
	ledger *collection[[]string]
	cmu    sync.Mutex
}

// New creates the data directories if needed and returns the repository
func New() (*Repo, error) {
	dir := conf.Options.Dir
	for _, d := range []string{dir, filepath.Join(dir, imagesDir), filepath.Join(dir, projectsDir)} {
		if err := os.MkdirAll(d, 0775); err != nil {
			return nil, err
		}
	}
	log.Infof("Using file store at %s", dir)
	return &Repo{
		dir:    dir,
		users:  newCollection(dir, usersFile, normalizeUsers),
		games:  newCollection(dir, gamesFile, normalizeGames),
		ledger: newCollection(dir, downloadLogFile, normalizeLedger),
	}, nil
}

func (r *Repo) Close() error {
	return nil
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// newID returns a fresh unique id that stays within the filesystem safe charset
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// safeID guards every id that ends up in a file name
func safeID(id string) bool {
	return id != "" && idPattern.MatchString(id)
}
