package web

import (
	"net/http"
	"sort"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
	log "github.com/sirupsen/logrus"
)

// usersHandler returns the whole user directory without the password hashes
func (ac *AppContext) usersHandler(w http.ResponseWriter, r *http.Request) {
	users := ac.r.Users()
	list := make([]domain.User, 0, len(users))
	for key := range users {
		list = append(list, users[key])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key() < list[j].Key() })
	writeWithFilter(w, list, domain.UserFilterFields...)
}

// downloadLogHandler returns which users were already counted per game
func (ac *AppContext) downloadLogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ac.r.DownloadLog())
}

// deleteUserHandler runs the account cascade: authored games, comments,
// download records and votes go first, the user record last
func (ac *AppContext) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	login := requestParams(r).ByName("login")
	switch err := ac.r.DeleteUser(login); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
		w.Write([]byte("\n"))
	case repo.ErrNotFound:
		WriteError(w, ErrNotFound)
	case repo.ErrProtected:
		WriteError(w, ErrProtectedUser)
	case repo.ErrPartial:
		log.Errorf("Deleting user %s finished with failed steps", login)
		WriteError(w, ErrPartialDelete)
	default:
		log.WithError(err).Errorf("Failed deleting user %s", login)
		WriteError(w, ErrInternalServer)
	}
}
