package commands

import (
	"argosync/lib/configutil"
	configlibsql "argosync/lib/configutil/libsql"
	"argosync/lib/serviceutil"
	"argosync/services/notify"
	"argosync/services/sync"
)

type ArgoConfig struct {
	SchoolCode string `json:"school_code"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

type NotionConfig struct {
	Token string `json:"token"`
	// parent page for generated summary pages
	ParentPage string         `json:"parent_page"`
	Databases  sync.Databases `json:"databases"`
}

type GeminiConfig struct {
	ApiKey string `json:"api_key"`
	Model  string `json:"model"`
}

type Config struct {
	Argo   ArgoConfig   `json:"argo"`
	Notion NotionConfig `json:"notion"`
	Gemini GeminiConfig `json:"gemini"`
	// optional, raw payloads are kept here when set
	Snapshots configlibsql.Struct `json:"snapshots"`
	// optional, run reports are mailed when set
	Smtp notify.SmtpConfig `json:"smtp"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}
