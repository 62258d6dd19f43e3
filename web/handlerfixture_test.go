package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
	"github.com/TVFXSquad/NewCatroid-Community-Site/util"
)

type HandlerFixture struct {
	appcontext *AppContext
	router     *Router
	response   *httptest.ResponseRecorder
	r          *repo.Repo
}

func newHandlerFixture(t *testing.T) *HandlerFixture {
	hf := new(HandlerFixture)
	conf.Default()
	conf.Options.Dir = t.TempDir()
	static := t.TempDir()
	err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html><body>NewCatroid</body></html>"), 0664)
	if err != nil {
		t.Fatal(err)
	}
	hf.r, err = repo.New()
	if err != nil {
		t.Fatal(err)
	}
	hf.appcontext = NewContext(hf.r)
	hf.router = New(hf.appcontext, static)
	hf.response = httptest.NewRecorder()
	return hf
}

func (hf *HandlerFixture) Close() {
	hf.r.Close()
}

func (hf *HandlerFixture) sendMultiPartRequest(req *http.Request, isSessionCookie bool, sessionValue, contentTypeHeader string) {
	hf.sendGeneralRequest(req, isSessionCookie, sessionValue, contentTypeHeader)
}

func (hf *HandlerFixture) sendRequest(req *http.Request, isSessionCookie bool, sessionValue string) {
	hf.sendGeneralRequest(req, isSessionCookie, sessionValue, "application/json")
}

func (hf *HandlerFixture) sendGeneralRequest(req *http.Request, isSessionCookie bool, sessionValue, contentTypeHeader string) {
	hf.response = httptest.NewRecorder()

	contentType := "application/json"
	if len(contentTypeHeader) > 0 {
		contentType = contentTypeHeader
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	pass := conf.Options.Security.SessionKey
	val, cErr := util.Encrypt(noXSRFAllowed+time.Now().String(), []byte(pass))
	if cErr == nil {
		req.AddCookie(&http.Cookie{Name: xsrfCookie, Value: val})
		req.Header.Set(xsrfHeader, val)

	}
	if isSessionCookie {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionValue})
	}

	hf.router.ServeHTTP(hf.response, req)
}
