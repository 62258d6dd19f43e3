package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
	"github.com/TVFXSquad/NewCatroid-Community-Site/domain"
	"github.com/TVFXSquad/NewCatroid-Community-Site/repo"
)

var (
	confFile = flag.String("conf", "", "Path to configuration file in JSON format")
	user     = flag.String("u", "admin", "The user to create")
	email    = flag.String("email", "", "The email of the user")
	pass     = flag.String("p", "", "The password to set")
)

func stderr(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}

func check(e error) {
	if e != nil {
		stderr("Error - %v\n", e)
	}
}

func main() {
	flag.Parse()
	if *pass == "" {
		stderr("Please provide the password")
	}
	conf.Default()
	if *confFile != "" {
		err := conf.Load(*confFile)
		check(err)
	}
	check(domain.ValidateLogin(*user))
	if *email != "" {
		check(domain.ValidateEmail(*email))
	}
	r, err := repo.New()
	check(err)
	defer r.Close()
	u := &domain.User{Login: *user, Email: strings.ToLower(*email)}
	u.SetPassword(*pass)
	err = r.SetUser(u)
	check(err)
}
