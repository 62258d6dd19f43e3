package web

import (
	"net/http"
	"path/filepath"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	log "github.com/sirupsen/logrus"
)

// downloadHandler records the user's download and bumps the counter exactly
// once per user. A repeated download is acknowledged without counting.
func (ac *AppContext) downloadHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := requestParams(r).ByName("id")
	g, err := ac.r.Game(id)
	if err != nil {
		WriteError(w, ErrNotFound)
		return
	}
	if ac.r.HasDownloaded(id, u.Login) {
		writeJSON(w, map[string]interface{}{"incremented": false, "downloads": g.Downloads})
		return
	}
	if err = ac.r.RecordDownload(id, u.Login); err != nil {
		log.WithError(err).Errorf("Failed recording download of %s by %s", id, u.Login)
		WriteError(w, ErrInternalServer)
		return
	}
	n, err := ac.r.IncrementDownloads(id)
	if err != nil {
		// The ledger was written but the counter was not, the two are now out of sync
		log.WithError(err).Errorf("Download ledger and counter of %s are inconsistent after user %s", id, u.Login)
		WriteError(w, ErrInternalServer)
		return
	}
	writeJSON(w, map[string]interface{}{"incremented": true, "downloads": n})
}

// fileHandler serves the stored project file as an attachment
func (ac *AppContext) fileHandler(w http.ResponseWriter, r *http.Request) {
	id := requestParams(r).ByName("id")
	g, err := ac.r.Game(id)
	if err != nil {
		WriteError(w, ErrNotFound)
		return
	}
	absFile, err := filepath.Abs(filepath.Join(conf.Options.Dir, g.File))
	if err != nil {
		log.WithError(err).Errorf("Something wrong with the file path - %#v", g)
		WriteError(w, ErrInternalServer)
		return
	}
	dir, name := filepath.Split(absFile)
	r.URL.Path = "/" + name
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	fileServer := http.FileServer(http.Dir(dir))
	fileServer.ServeHTTP(w, r)
}
