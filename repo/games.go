package repo

import (
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/util"
	log "github.com/sirupsen/logrus"
)

// normalizeGames recomputes the lowercase author key and vote sets so the
// stored data stays self-consistent even if a caller passed stale fields
func normalizeGames(m map[string]domain.Game) map[string]domain.Game {
	res := make(map[string]domain.Game, len(m))
	for id, g := range m {
		g.ID = id
		g.AuthorKey = strings.ToLower(g.Author)
		g.Likes = util.Unique(util.ToLower(g.Likes))
		g.Dislikes = util.Unique(util.ToLower(g.Dislikes))
		if g.Downloads < 0 {
			g.Downloads = 0
		}
		res[id] = g
	}
	return res
}

// Games returns the whole game collection keyed by game id
func (r *Repo) Games() map[string]domain.Game {
	return r.games.load()
}

// Game retrieves a single game by id
func (r *Repo) Game(id string) (*domain.Game, error) {
	games := r.games.load()
	g, ok := games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

// saveUpload writes one uploaded stream below the data directory and returns
// the stored path relative to it. An empty stream is rejected.
func (r *Repo) saveUpload(rel string, src io.Reader) (string, error) {
	target := filepath.Join(r.dir, rel)
	out, err := os.Create(target)
	if err != nil {
		log.WithError(err).Errorf("Failed creating upload file %s", target)
		return "", err
	}
	defer out.Close()
	n, err := io.Copy(out, src)
	if err != nil {
		log.WithError(err).Errorf("Failed writing upload file %s", target)
		os.Remove(target)
		return "", err
	}
	if n == 0 {
		os.Remove(target)
		return "", domain.ValidationError("Uploaded file is empty")
	}
	return rel, nil
}

// removeFile unlinks a stored file path best-effort, only logging failures
func (r *Repo) removeFile(rel, gameID string) {
	if rel == "" {
		return
	}
	if err := os.Remove(filepath.Join(r.dir, rel)); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("Failed removing file %s of game %s", rel, gameID)
	}
}

// AddGame stores the cover image and the project file keyed by a fresh game
// id, then creates the game record with zeroed counters and vote sets. The
// description is escaped for embedding in markup before it is stored. If
// the record cannot be saved the files are removed again.
func (r *Repo) AddGame(title, author, description, imageExt, fileExt string, image, file io.Reader) (string, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return "", err
	}
	if err := domain.ValidateDescription(description); err != nil {
		return "", err
	}
	id := newID("game")
	imagePath, err := r.saveUpload(filepath.Join(imagesDir, id+"_cover."+imageExt), image)
	if err != nil {
		return "", err
	}
	filePath, err := r.saveUpload(filepath.Join(projectsDir, id+"."+fileExt), file)
	if err != nil {
		r.removeFile(imagePath, id)
		return "", err
	}
	games := r.games.load()
	games[id] = domain.Game{
		ID:          id,
		Title:       title,
		Image:       imagePath,
		File:        filePath,
		Author:      author,
		AuthorKey:   strings.ToLower(author),
		Description: html.EscapeString(description),
		Created:     time.Now().Unix(),
		Likes:       []string{},
		Dislikes:    []string{},
	}
	if err = r.games.save(games); err != nil {
		log.WithError(err).Errorf("Failed saving games after adding %s", id)
		r.removeFile(imagePath, id)
		r.removeFile(filePath, id)
		return "", err
	}
	return id, nil
}

// VoteResult is the outcome of a vote operation
type VoteResult struct {
	Likes    int
	Dislikes int
	State    domain.VoteState
}

// Vote applies the three-state toggle for one user on one game: the same
// vote again removes it, the opposite vote moves the user over in a single
// write, and a vote from neutral joins the chosen set. The user is never in
// both sets at once.
func (r *Repo) Vote(id, login string, action domain.VoteAction) (*VoteResult, error) {
	games := r.games.load()
	g, ok := games[id]
	if !ok {
		return nil, ErrNotFound
	}
	key := strings.ToLower(login)
	liked := util.In(g.Likes, key)
	disliked := util.In(g.Dislikes, key)
	state := domain.VoteNeutral
	switch action {
	case domain.ActionLike:
		if disliked {
			g.Dislikes = util.Remove(g.Dislikes, key)
		}
		if liked {
			g.Likes = util.Remove(g.Likes, key)
		} else {
			g.Likes = append(g.Likes, key)
			state = domain.VoteLiked
		}
	case domain.ActionDislike:
		if liked {
			g.Likes = util.Remove(g.Likes, key)
		}
		if disliked {
			g.Dislikes = util.Remove(g.Dislikes, key)
		} else {
			g.Dislikes = append(g.Dislikes, key)
			state = domain.VoteDisliked
		}
	default:
		return nil, ErrVoteAction
	}
	games[id] = g
	if err := r.games.save(games); err != nil {
		log.WithError(err).Errorf("Failed saving games after vote on %s", id)
		return nil, err
	}
	return &VoteResult{Likes: len(g.Likes), Dislikes: len(g.Dislikes), State: state}, nil
}

// IncrementDownloads unconditionally increments the download counter and
// returns the new count. Callers gate it through the download ledger to keep
// the counter idempotent per user.
func (r *Repo) IncrementDownloads(id string) (int, error) {
	games := r.games.load()
	g, ok := games[id]
	if !ok {
		log.Warnf("Attempt to increment download count of unknown game %s", id)
		return 0, ErrNotFound
	}
	g.Downloads++
	games[id] = g
	if err := r.games.save(games); err != nil {
		log.WithError(err).Errorf("Failed saving games after download increment of %s", id)
		return 0, err
	}
	return g.Downloads, nil
}

// DeleteGame removes the game record together with its stored files, its
// comment log and its download ledger entry. File and log removal are best
// effort, a failed unlink never aborts the record deletion. A ledger entry
// that could not be pruned is reported as ErrPartial so the caller knows an
// orphan was left behind.
func (r *Repo) DeleteGame(id string) error {
	if !safeID(id) {
		return ErrNotFound
	}
	games := r.games.load()
	g, ok := games[id]
	if !ok {
		return ErrNotFound
	}
	r.removeFile(g.Image, id)
	r.removeFile(g.File, id)
	r.removeCommentLog(id)
	delete(games, id)
	if err := r.games.save(games); err != nil {
		log.WithError(err).Errorf("Failed saving games after deleting %s", id)
		return err
	}
	ledger := r.ledger.load()
	if _, ok = ledger[id]; ok {
		delete(ledger, id)
		if err := r.ledger.save(ledger); err != nil {
			log.WithError(err).Errorf("Failed pruning download log entry of deleted game %s", id)
			return ErrPartial
		}
	}
	return nil
}
