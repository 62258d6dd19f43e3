package repo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// Each game has its own append-only comment log: one self-contained JSON
// record per line. Appending never rewrites existing records, only deletion
// reconstructs the file.

func (r *Repo) commentPath(gameID string) string {
	return filepath.Join(r.dir, "comments_"+gameID+".log")
}

// AddComment validates and appends one comment record to the game's log and
// returns the fresh comment id. Author and body are escaped for embedding in
// markup before they are stored.
func (r *Repo) AddComment(gameID, author, body string) (string, error) {
	if !safeID(gameID) {
		return "", ErrNotFound
	}
	author = strings.TrimSpace(author)
	if author == "" {
		return "", domain.ValidationError("Comment author cannot be empty")
	}
	if err := domain.ValidateComment(body); err != nil {
		return "", err
	}
	if _, err := r.Game(gameID); err != nil {
		return "", err
	}
	c := domain.Comment{
		ID:      newID("cmt"),
		Author:  html.EscapeString(author),
		Body:    html.EscapeString(strings.TrimSpace(body)),
		Created: time.Now().Unix(),
	}
	b, err := json.Marshal(c)
	if err != nil {
		log.WithError(err).Errorf("Failed encoding comment for game %s", gameID)
		return "", err
	}
	path := r.commentPath(gameID)
	r.cmu.Lock()
	defer r.cmu.Unlock()
	flk := flock.New(path + ".lock")
	if err = flk.Lock(); err != nil {
		log.WithError(err).Errorf("Failed locking comment log %s", path)
		return "", err
	}
	defer flk.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		log.WithError(err).Errorf("Failed opening comment log %s", path)
		return "", err
	}
	defer f.Close()
	if _, err = f.Write(append(b, '\n')); err != nil {
		log.WithError(err).Errorf("Failed appending to comment log %s", path)
		return "", err
	}
	return c.ID, nil
}

// Comments returns all well-formed records of the game's log in stored
// order. Malformed lines are skipped and logged, never fatal. A missing log
// is an empty list.
func (r *Repo) Comments(gameID string) ([]domain.Comment, error) {
	if !safeID(gameID) {
		return nil, ErrNotFound
	}
	path := r.commentPath(gameID)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Comment{}, nil
		}
		log.WithError(err).Errorf("Failed reading comment log %s", path)
		return nil, err
	}
	comments := []domain.Comment{}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var c domain.Comment
		if err = json.Unmarshal(line, &c); err != nil || c.ID == "" {
			log.Warnf("Skipping invalid comment line in %s - %s", path, line)
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// DeleteComment reconstructs the log from all records except the matching
// one. When the last record goes, the log file itself is removed instead of
// being kept empty.
func (r *Repo) DeleteComment(gameID, commentID string) error {
	if !safeID(gameID) || !safeID(commentID) {
		return ErrNotFound
	}
	comments, err := r.Comments(gameID)
	if err != nil {
		return err
	}
	remaining := make([]domain.Comment, 0, len(comments))
	found := false
	for _, c := range comments {
		if c.ID == commentID {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return ErrNotFound
	}
	path := r.commentPath(gameID)
	r.cmu.Lock()
	defer r.cmu.Unlock()
	flk := flock.New(path + ".lock")
	if err = flk.Lock(); err != nil {
		log.WithError(err).Errorf("Failed locking comment log %s", path)
		return err
	}
	defer flk.Unlock()
	if len(remaining) == 0 {
		if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Errorf("Failed removing empty comment log %s", path)
			return err
		}
		return nil
	}
	var buf bytes.Buffer
	for _, c := range remaining {
		b, err := json.Marshal(c)
		if err != nil {
			log.WithError(err).Errorf("Failed encoding comment %s for game %s", c.ID, gameID)
			return err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, buf.Bytes(), 0664); err != nil {
		log.WithError(err).Errorf("Failed rewriting comment log %s", path)
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		log.WithError(err).Errorf("Failed replacing comment log %s", path)
		os.Remove(tmp)
		return err
	}
	return nil
}

// removeCommentLog drops the whole log of a game, best effort
func (r *Repo) removeCommentLog(gameID string) {
	path := r.commentPath(gameID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("Failed removing comment log %s", path)
	}
	os.Remove(path + ".lock")
}
