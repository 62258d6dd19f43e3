package web

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
	log "github.com/sirupsen/logrus"
)

// gameView is the wire representation of a game. Vote sets are collapsed to
// counts, the requesting user only ever sees her own vote state.
type gameView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Downloads   int    `json:"downloads"`
	Created     int64  `json:"created"`
	Likes       int    `json:"likes"`
	Dislikes    int    `json:"dislikes"`
	Vote        string `json:"vote,omitempty"`
}

func newGameView(g *domain.Game) *gameView {
	return &gameView{
		ID:          g.ID,
		Title:       g.Title,
		Image:       g.Image,
		Author:      g.Author,
		Description: g.Description,
		Downloads:   g.Downloads,
		Created:     g.Created,
		Likes:       len(g.Likes),
		Dislikes:    len(g.Dislikes),
	}
}

// listGamesHandler serves the home page listing: newest first by default,
// most downloaded first with ?sort=downloads, optionally filtered by author
func (ac *AppContext) listGamesHandler(w http.ResponseWriter, r *http.Request) {
	author := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("author")))
	games := ac.r.Games()
	views := make([]*gameView, 0, len(games))
	for id := range games {
		g := games[id]
		if author != "" && g.AuthorKey != author {
			continue
		}
		views = append(views, newGameView(&g))
	}
	if r.URL.Query().Get("sort") == "downloads" {
		sort.Slice(views, func(i, j int) bool {
			if views[i].Downloads != views[j].Downloads {
				return views[i].Downloads > views[j].Downloads
			}
			return views[i].Created > views[j].Created
		})
	} else {
		sort.Slice(views, func(i, j int) bool {
			if views[i].Created != views[j].Created {
				return views[i].Created > views[j].Created
			}
			return views[i].ID < views[j].ID
		})
	}
	writeJSON(w, views)
}

// gameHandler serves a single game. When a valid session rides along, the
// response also carries that user's vote state.
func (ac *AppContext) gameHandler(w http.ResponseWriter, r *http.Request) {
	id := requestParams(r).ByName("id")
	g, err := ac.r.Game(id)
	if err != nil {
		WriteError(w, ErrNotFound)
		return
	}
	view := newGameView(g)
	if sess, err := decryptSession(r); err == nil {
		view.Vote = g.VoteOf(sess.User).String()
	}
	writeJSON(w, view)
}

// imageExtension accepts only JPEG and PNG cover files
func imageExtension(filename string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "jpg", "jpeg", "png":
		return ext, nil
	}
	return "", domain.ValidationError("Cover image must be a JPEG or PNG file")
}

// validateCover decodes the image header and enforces the square constraint
func validateCover(f io.ReadSeeker) error {
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return domain.ValidationError("Cover image is not a readable JPEG or PNG")
	}
	if format != "jpeg" && format != "png" {
		return domain.ValidationError("Cover image must be a JPEG or PNG file")
	}
	if cfg.Width != cfg.Height {
		return domain.ValidationError("Cover image must be square")
	}
	_, err = f.Seek(0, io.SeekStart)
	return err
}

// publishHandler accepts the multipart publish form: title, description, a
// square cover image and the project file
func (ac *AppContext) publishHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if remaining := ac.r.CooldownRemaining(u.Login); remaining > 0 {
		WriteError(w, cooldownError(remaining))
		return
	}

	limits := conf.Options.Limits
	r.Body = http.MaxBytesReader(w, r.Body, (limits.ImageMaxMB+limits.FileMaxMB+1)*1024*1024)
	title := domain.CollapseLineBreaks(strings.TrimSpace(r.FormValue("title")))
	description := strings.TrimSpace(r.FormValue("description"))

	img, imgHeader, err := r.FormFile("image")
	if err != nil {
		WriteError(w, validationError(domain.ValidationError("Cover image is missing")))
		return
	}
	defer img.Close()
	imgExt, err := imageExtension(imgHeader.Filename)
	if err != nil {
		WriteError(w, validationError(err))
		return
	}
	if imgHeader.Size > limits.ImageMaxMB*1024*1024 {
		WriteError(w, validationError(domain.ValidationError("Cover image is too large")))
		return
	}
	if err = validateCover(img); err != nil {
		WriteError(w, validationError(err))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		WriteError(w, validationError(domain.ValidationError("Project file is missing")))
		return
	}
	defer file.Close()
	fileExt := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if fileExt != limits.Extension {
		WriteError(w, validationError(domain.ValidationError("Project file must have the ."+limits.Extension+" extension")))
		return
	}
	if fileHeader.Size > limits.FileMaxMB*1024*1024 {
		WriteError(w, validationError(domain.ValidationError("Project file is too large")))
		return
	}

	id, err := ac.r.AddGame(title, u.Login, description, imgExt, fileExt, img, file)
	if err != nil {
		var ve domain.ValidationError
		if errors.As(err, &ve) {
			WriteError(w, validationError(err))
			return
		}
		log.WithError(err).Errorf("Failed publishing game for %s", u.Login)
		WriteError(w, ErrInternalServer)
		return
	}
	if err = ac.r.RecordUpload(u.Login); err != nil {
		log.WithError(err).Warnf("Failed stamping upload time for %s", u.Login)
	}
	log.Infof("User %s published game %s", u.Login, id)
	writeJSON(w, map[string]string{"id": id})
}

// voteHandler toggles the user's vote on the game
func (ac *AppContext) voteHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := requestParams(r).ByName("id")
	var action domain.VoteAction
	switch r.URL.Query().Get("action") {
	case "like":
		action = domain.ActionLike
	case "dislike":
		action = domain.ActionDislike
	default:
		WriteError(w, validationError(domain.ValidationError("Vote action must be like or dislike")))
		return
	}
	res, err := ac.r.Vote(id, u.Login, action)
	if err != nil {
		if err == repo.ErrNotFound {
			WriteError(w, ErrNotFound)
			return
		}
		log.WithError(err).Errorf("Failed voting on game %s", id)
		WriteError(w, ErrInternalServer)
		return
	}
	writeJSON(w, map[string]interface{}{
		"likes":    res.Likes,
		"dislikes": res.Dislikes,
		"vote":     res.State.String(),
	})
}

// deleteGameHandler removes a game together with its files, comments and
// download records
func (ac *AppContext) deleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id := requestParams(r).ByName("id")
	if err := ac.r.DeleteGame(id); err != nil {
		switch err {
		case repo.ErrNotFound:
			WriteError(w, ErrNotFound)
		case repo.ErrPartial:
			log.Errorf("Deleting game %s finished with failed steps", id)
			WriteError(w, ErrPartialDelete)
		default:
			log.WithError(err).Errorf("Failed deleting game %s", id)
			WriteError(w, ErrInternalServer)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	w.Write([]byte("\n"))
}
