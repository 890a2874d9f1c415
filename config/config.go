package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"

	"github.com/talkincode/toughkiosk/pkg/common"
)

type SysConfig struct {
	Appname  string `yaml:"appname" json:"appname"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
	// Enabled turns on the hub admin/editor API. Display agents leave it off.
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// AgentConfig configures the display-device side of the process: the
// locally persisted device identity, the fixed poll/heartbeat cadence and
// the liveness threshold used to derive online/offline status.
type AgentConfig struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	DeviceId           string `yaml:"device_id" json:"device_id"`
	DeviceName         string `yaml:"device_name" json:"device_name"`
	DeviceType         string `yaml:"device_type" json:"device_type"` // kiosk or mobile
	PollIntervalSec    int    `yaml:"poll_interval_sec" json:"poll_interval_sec"`
	HeartbeatSec       int    `yaml:"heartbeat_sec" json:"heartbeat_sec"`
	OnlineThresholdSec int    `yaml:"online_threshold_sec" json:"online_threshold_sec"`
}

// AssetsConfig configures the remote binary-asset store (SFTP) and the
// external PDF rasterizer endpoint.
type AssetsConfig struct {
	SftpHost      string `yaml:"sftp_host" json:"sftp_host"`
	SftpPort      int    `yaml:"sftp_port" json:"sftp_port"`
	SftpUser      string `yaml:"sftp_user" json:"sftp_user"`
	SftpPasswd    string `yaml:"sftp_passwd" json:"sftp_passwd"`
	SftpBasedir   string `yaml:"sftp_basedir" json:"sftp_basedir"`
	PublicBaseURL string `yaml:"public_base_url" json:"public_base_url"`
	RasterizerURL string `yaml:"rasterizer_url" json:"rasterizer_url"`
	// MaxInlineBytes is the ceiling above which an asset that failed to
	// upload may not be embedded inline in the document.
	MaxInlineBytes int64 `yaml:"max_inline_bytes" json:"max_inline_bytes"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Agent    AgentConfig  `yaml:"agent" json:"agent"`
	Assets   AssetsConfig `yaml:"assets" json:"assets"`
	Logger   LogConfig    `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "metrics"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appname:  "ToughKiosk",
		Location: "Asia/Shanghai",
		Workdir:  "/var/toughkiosk",
		Debug:    true,
	},
	Web: WebConfig{
		Host:    "0.0.0.0",
		Port:    1855,
		Secret:  "9b6de5cc-0731-1203-xxtt-0f568ac9da37",
		Enabled: true,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toughkiosk",
		User:     "postgres",
		Passwd:   "root",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Agent: AgentConfig{
		Enabled:            false,
		DeviceType:         "kiosk",
		PollIntervalSec:    60,
		HeartbeatSec:       30,
		OnlineThresholdSec: 120,
	},
	Assets: AssetsConfig{
		SftpPort:       22,
		SftpBasedir:    "/var/toughkiosk/assets",
		MaxInlineBytes: 2 * 1024 * 1024,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughkiosk/toughkiosk.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	var p int64
	_, err := fmt.Sscanf(evalue, "%d", &p)
	if err == nil {
		f(p)
	}
}

// LoadConfig reads the yaml configuration file and applies environment
// variable overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	if common.FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	} else {
		cfg = DefaultAppConfig
	}

	setEnvValue("TOUGHKIOSK_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("TOUGHKIOSK_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = v == "true" })
	setEnvValue("TOUGHKIOSK_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("TOUGHKIOSK_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvInt64Value("TOUGHKIOSK_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })
	setEnvValue("TOUGHKIOSK_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvInt64Value("TOUGHKIOSK_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvValue("TOUGHKIOSK_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("TOUGHKIOSK_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("TOUGHKIOSK_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("TOUGHKIOSK_DEVICE_ID", func(v string) { cfg.Agent.DeviceId = v })
	setEnvValue("TOUGHKIOSK_DEVICE_NAME", func(v string) { cfg.Agent.DeviceName = v })

	cfg.initDirs()
	return cfg
}
