package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const DefaultPath = "./config/application.yaml"

const envPrefix = "CALSYNC_"

type Application struct {
	Host           string         `koanf:"host"`
	Google         Google         `koanf:"google"`
	Calendars      Calendars      `koanf:"calendars"`
	Reconciliation Reconciliation `koanf:"reconciliation"`
	Events         Events         `koanf:"events"`
	Database       Database       `koanf:"db"`
	Nats           Nats           `koanf:"nats"`
	Server         Server         `koanf:"server"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	// Account names the row holding the OAuth token of the calendar owner.
	Account string `koanf:"account"`
	// CredentialsFile, when set, is used instead of the stored OAuth token.
	CredentialsFile string `koanf:"credentialsfile"`
}

type Calendars struct {
	Releases Calendar `koanf:"releases"`
	Calls    Calendar `koanf:"calls"`
}

type Calendar struct {
	Id string `koanf:"id"`
}

type Reconciliation struct {
	MonthsBefore int `koanf:"monthsbefore"`
	MonthsAfter  int `koanf:"monthsafter"`
	// Schedule is a cron expression; empty disables scheduled runs.
	Schedule string `koanf:"schedule"`
	PageSize int    `koanf:"pagesize"`
}

type Events struct {
	ReleasesDir string `koanf:"releasesdir"`
	CallsDir    string `koanf:"callsdir"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Nats struct {
	Url     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

func defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Google: Google{
			Account: "default",
		},
		Reconciliation: Reconciliation{
			MonthsBefore: 1,
			MonthsAfter:  6,
			PageSize:     100,
		},
		Events: Events{
			ReleasesDir: "quarkus-releases",
			CallsDir:    "quarkus-calls",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "calsync",
			Pass:   "",
			Name:   "calsync",
			Schema: "public",
		},
		Nats: Nats{
			Subject: "calsync.actions",
		},
		Server: Server{
			Addr: ":8181",
		},
	}
}

// Load layers defaults, the YAML file at path (optional) and CALSYNC_ environment
// variables, in that order.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// DatabaseEnabled reports whether the OAuth token store is needed.
func (a Application) DatabaseEnabled() bool {
	return a.Google.CredentialsFile == ""
}
