package repo

import (
	"strings"
	"time"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/asaskevich/govalidator"
	log "github.com/sirupsen/logrus"
)

// normalizeUsers rebuilds the case-insensitive lookup keys and the lowercase
// emails, and backfills the display login from the key for old records
func normalizeUsers(m map[string]domain.User) map[string]domain.User {
	res := make(map[string]domain.User, len(m))
	for key, u := range m {
		if u.Login == "" {
			u.Login = key
		}
		u.Email = strings.ToLower(u.Email)
		res[strings.ToLower(key)] = u
	}
	return res
}

// Users returns the whole user collection keyed by lowercased login
func (r *Repo) Users() map[string]domain.User {
	return r.users.load()
}

// User looks a user up by login, case-insensitively
func (r *Repo) User(login string) (*domain.User, error) {
	users := r.users.load()
	u, ok := users[strings.ToLower(strings.TrimSpace(login))]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// SetUser upserts a user record
func (r *Repo) SetUser(u *domain.User) error {
	log.Infof("Saving user - %s", u.Login)
	users := r.users.load()
	users[u.Key()] = *u
	return r.users.save(users)
}

// Register validates the triple, enforces case-insensitive login and email
// uniqueness and stores the user with a salted bcrypt hash
func (r *Repo) Register(login, email, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)
	if err := domain.ValidateLogin(login); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	key := strings.ToLower(login)
	emailLower := strings.ToLower(email)
	users := r.users.load()
	if _, exists := users[key]; exists {
		return nil, ErrLoginTaken
	}
	for _, u := range users {
		if u.Email == emailLower {
			return nil, ErrEmailTaken
		}
	}
	u := domain.User{Login: login, Email: emailLower}
	u.SetPassword(password)
	users[key] = u
	if err := r.users.save(users); err != nil {
		log.WithError(err).Errorf("Failed saving users during registration of %s", key)
		return nil, err
	}
	return &u, nil
}

// Authenticate resolves the identifier either as an email (detected by "@"
// plus email grammar) or as a login, both case-insensitively, and verifies
// the password. It returns the stored original-case login on success and
// ErrNotFound otherwise - unknown identifier and wrong password are
// indistinguishable to the caller.
func (r *Repo) Authenticate(identifier, password string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", ErrNotFound
	}
	lower := strings.ToLower(identifier)
	users := r.users.load()
	if strings.Contains(lower, "@") && govalidator.IsEmail(lower) {
		// Registration enforces email uniqueness, the scan is defensive only
		for _, u := range users {
			if u.Email == lower {
				if u.CheckPassword(password) {
					return u.Login, nil
				}
				return "", ErrNotFound
			}
		}
		return "", ErrNotFound
	}
	u, ok := users[lower]
	if !ok || !u.CheckPassword(password) {
		return "", ErrNotFound
	}
	return u.Login, nil
}

// RecordUpload stamps the current time as the user's last upload time
func (r *Repo) RecordUpload(login string) error {
	users := r.users.load()
	key := strings.ToLower(strings.TrimSpace(login))
	u, ok := users[key]
	if !ok {
		return ErrNotFound
	}
	u.LastUpload = time.Now().Unix()
	users[key] = u
	if err := r.users.save(users); err != nil {
		log.WithError(err).Errorf("Failed saving upload time for %s", key)
		return err
	}
	return nil
}

// CooldownRemaining returns how long the user still has to wait before the
// next publish, zero when publishing is allowed
func (r *Repo) CooldownRemaining(login string) time.Duration {
	u, err := r.User(login)
	if err != nil || u.LastUpload == 0 {
		return 0
	}
	cooldown := time.Duration(conf.Options.Limits.UploadCooldown) * time.Second
	elapsed := time.Since(time.Unix(u.LastUpload, 0))
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}
