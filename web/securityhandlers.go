package web

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
	"github.com/gorilla/context"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

var bruteForceMap *lru.Cache

type credentials struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type registration struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func initBruteForceMap(sleep bool) {
	tmpBruteForceMap, err := lru.New(100)
	if err != nil {
		log.WithError(err).Error("Failed creating brute force lru map sleep:", sleep)
		if sleep {
			time.Sleep(time.Second * 10)
		}
	} else {
		bruteForceMap = tmpBruteForceMap
	}
}

func (ac *AppContext) preventBruteForce(key string) {
	var count int
	//This is just for safety if for some reason we fail to create the map in the initialization phase
	if bruteForceMap == nil {
		initBruteForceMap(true)
	}
	countInter, exists := bruteForceMap.Get(key)
	if exists {
		count, _ = countInter.(int)
		count++
	}
	if count <= 0 {
		count = 1
	}
	if count > 5 {
		time.Sleep(time.Second * 60 * time.Duration(count-5))
	} else if count > 2 {
		time.Sleep(time.Second * 10)
	}
	bruteForceMap.Add(key, count)
}

func (ac *AppContext) resetBruteForce(key string) {
	bruteForceMap.Remove(key)
}

// r.RemoteAddr is in format ip:port, and might contain ipv6 data in format a:a:a:a:a:a:port
func (ac *AppContext) getBruteforceKey(r *http.Request, username string) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host + username
}

func (ac *AppContext) handleLoginError(r *http.Request, w http.ResponseWriter, user string) {
	ac.preventBruteForce(ac.getBruteforceKey(r, user))
	WriteError(w, ErrCredentials)
}

func (ac *AppContext) loginResponse(w http.ResponseWriter, u *domain.User) {
	log.Infof("User %s logged in\n", u.Login)
	loginTime := time.Now()

	sess := session{
		User: u.Login,
		When: loginTime.Unix() * 1000,
	}

	u.LastLogin = loginTime
	ac.r.SetUser(u)

	setSessionCookie(w, &sess)
	writeWithFilter(w, u, domain.UserFilterFields...)
}

// registerHandler creates a new account and logs it in right away
func (ac *AppContext) registerHandler(w http.ResponseWriter, r *http.Request) {
	body := context.Get(r, "body").(*registration)
	u, err := ac.r.Register(body.Login, body.Email, body.Password)
	if err != nil {
		var ve domain.ValidationError
		switch {
		case errors.As(err, &ve):
			WriteError(w, validationError(err))
		case err == repo.ErrLoginTaken:
			WriteError(w, ErrLoginTaken)
		case err == repo.ErrEmailTaken:
			WriteError(w, ErrEmailTaken)
		default:
			log.WithError(err).Errorf("Failed registering user %s", body.Login)
			WriteError(w, ErrInternalServer)
		}
		return
	}
	ac.loginResponse(w, u)
}

// loginHandler accepts either the login or the registered email as the user field
func (ac *AppContext) loginHandler(w http.ResponseWriter, r *http.Request) {
	body := context.Get(r, "body").(*credentials)
	login, err := ac.r.Authenticate(body.User, body.Password)
	if err != nil {
		ac.handleLoginError(r, w, body.User)
		return
	}
	u, err := ac.r.User(login)
	if err != nil {
		log.WithError(err).Errorf("Authenticated user %s has no record", login)
		WriteError(w, ErrInternalServer)
		return
	}
	// successful login needs to reset the failed attempt count
	ac.resetBruteForce(ac.getBruteforceKey(r, body.User))
	ac.loginResponse(w, u)
}

func (ac *AppContext) logoutHandler(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
	w.Write([]byte("\n"))
}

func (ac *AppContext) userCurrHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	writeWithFilter(w, u, domain.UserFilterFields...)
}
