package web

import (
	"errors"
	"net/http"
	"sort"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
	"github.com/gorilla/context"
	log "github.com/sirupsen/logrus"
)

type commentBody struct {
	Comment string `json:"comment"`
}

// listCommentsHandler returns the game's comments, newest first
func (ac *AppContext) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id := requestParams(r).ByName("id")
	if _, err := ac.r.Game(id); err != nil {
		WriteError(w, ErrNotFound)
		return
	}
	comments, err := ac.r.Comments(id)
	if err != nil {
		log.WithError(err).Errorf("Failed reading comments of game %s", id)
		WriteError(w, ErrInternalServer)
		return
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Created > comments[j].Created
	})
	writeJSON(w, comments)
}

func (ac *AppContext) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := requestParams(r).ByName("id")
	body := context.Get(r, "body").(*commentBody)
	cid, err := ac.r.AddComment(id, u.Login, body.Comment)
	if err != nil {
		var ve domain.ValidationError
		switch {
		case errors.As(err, &ve):
			WriteError(w, validationError(err))
		case err == repo.ErrNotFound:
			WriteError(w, ErrNotFound)
		default:
			log.WithError(err).Errorf("Failed adding comment to game %s", id)
			WriteError(w, ErrInternalServer)
		}
		return
	}
	writeJSON(w, map[string]string{"id": cid})
}

func (ac *AppContext) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	params := requestParams(r)
	id, cid := params.ByName("id"), params.ByName("cid")
	if err := ac.r.DeleteComment(id, cid); err != nil {
		if err == repo.ErrNotFound {
			WriteError(w, ErrNotFound)
			return
		}
		log.WithError(err).Errorf("Failed deleting comment %s of game %s", cid, id)
		WriteError(w, ErrInternalServer)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	w.Write([]byte("\n"))
}
