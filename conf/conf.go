// Package conf provides basic configuration handling from a file exposing a single global struct with all configuration.
package conf

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options anonymous struct holds the global configuration options for the server
var Options struct {
	// The address to listen on
	Address string
	// The HTTP address to listen on if the main address is HTTPS
	HTTPAddress string
	// ExternalAddress to our web tier
	ExternalAddress string
	// Security defintions
	Security struct {
		// The secret session key that is used to symmetrically encrypt sessions stored in cookies
		SessionKey string
		// Session timeout in minutes
		Timeout int
	}
	// SSL configuration
	SSL struct {
		// The certificate file
		Cert string
		// The private key file
		Key string
	}
	// Dir is the data directory holding the collection files, comment logs and uploaded files
	Dir string
	// Location of the static resources
	Static string
	// Admins are the protected administrator logins, matched case-insensitively
	Admins []string
	// Limits on user provided content
	Limits struct {
		// TitleMax is the max game title length in characters
		TitleMax int
		// DescriptionMax is the max game description length in characters
		DescriptionMax int
		// CommentMax is the max comment length in characters
		CommentMax int
		// ImageMaxMB is the cover image size ceiling
		ImageMaxMB int64
		// FileMaxMB is the project file size ceiling
		FileMaxMB int64
		// Extension is the single allowed project file extension (without the dot)
		Extension string
		// UploadCooldown is the minimum number of seconds between two publishes by the same user
		UploadCooldown int64
	}
}

// The pipe writer to wrap around standard logger. It is configured in main.
var LogWriter *io.PipeWriter

// Load loads configuration from a file.
func Load(filename string) error {
	options, err := os.ReadFile(filename)
	if err != nil {
		logrus.WithField("error", err).Warn("Could not open config file and not using default")
		return err
	}
	err = json.Unmarshal(options, &Options)
	if err != nil {
		return err
	}
	if Options.Dir == "" {
		Options.Dir = "."
	}
	finalOptions, err := json.MarshalIndent(&Options, "", "  ")
	if err != nil {
		return err
	}
	logrus.Infof("Using options:\n%s\n", string(finalOptions))
	return nil
}

// Default resets the options to the built-in values
func Default() {
	Options.Address = ":9090"
	Options.Security.SessionKey = "kukuKiki1234qawsed.Strazaaplokij"
	Options.Security.Timeout = 1440
	Options.Dir = "data"
	Options.Static = "static"
	Options.Admins = []string{"jojo_kent", "tvfxsquad"}
	Options.Limits.TitleMax = 30
	Options.Limits.DescriptionMax = 500
	Options.Limits.CommentMax = 300
	Options.Limits.ImageMaxMB = 3
	Options.Limits.FileMaxMB = 35
	Options.Limits.Extension = "newtrobat"
	Options.Limits.UploadCooldown = 100
}

// IsAdmin reports whether the login belongs to a protected administrator
func IsAdmin(login string) bool {
	for _, a := range Options.Admins {
		if strings.EqualFold(a, login) {
			return true
		}
	}
	return false
}
