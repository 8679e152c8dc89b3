package telemock

import (
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/lang"
)

// Config contains telemock configurations.
//
// You can use environment variables to fill it:
// TELEMOCK_LISTEN - address of the bot API listener
// TELEMOCK_CHAT_ID - id of the default private test chat
// TELEMOCK_DEBUG - enable debug mode
type Config struct {
	// Listen is the address the bot API listener binds to.
	// Default is "localhost:8081".
	Listen string `yaml:"listen" json:"listen" env:"TELEMOCK_LISTEN"`

	// ChatID is the id of the default private chat used for direct
	// messages binds to. Default is 12345.
	ChatID int64 `yaml:"chat_id" json:"chat_id" env:"TELEMOCK_CHAT_ID"`

	// Bot is the synthetic bot identity reported by getMe and used as the
	// sender of every outbound message.
	Bot IdentityConfig `yaml:"bot" json:"bot"`

	// User is the default synthetic test user injected messages come from.
	User IdentityConfig `yaml:"user" json:"user"`

	// History controls the on-disk history autosave.
	History HistoryConfig `yaml:"history" json:"history"`

	// Web controls the browser-facing monitor.
	Web WebConfig `yaml:"web" json:"web"`

	// Database is the optional MongoDB history archive.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Debug is a flag that enables debug mode.
	// You can use environment variable TELEMOCK_DEBUG.
	Debug bool `yaml:"debug" json:"debug" env:"TELEMOCK_DEBUG"`
}

// IdentityConfig describes one synthetic identity.
type IdentityConfig struct {
	ID        int64  `yaml:"id" json:"id"`
	FirstName string `yaml:"first_name" json:"first_name"`
	Username  string `yaml:"username" json:"username"`
}

// HistoryConfig controls the periodic history autosave.
type HistoryConfig struct {
	// Save enables the periodic autosave job.
	Save bool `yaml:"save" json:"save" env:"TELEMOCK_HISTORY_SAVE"`
	// File is the autosave target. Default is ".telemock_history.json".
	File string `yaml:"file" json:"file" env:"TELEMOCK_HISTORY_FILE"`
	// SaveInterval is how often the autosave job runs. Default is 30s.
	SaveInterval time.Duration `yaml:"save_interval" json:"save_interval" env:"TELEMOCK_HISTORY_SAVE_INTERVAL"`
}

// WebConfig controls the browser monitor listener.
type WebConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"TELEMOCK_WEB_ENABLED"`
	Listen  string `yaml:"listen" json:"listen" env:"TELEMOCK_WEB_LISTEN"`
}

// DatabaseConfig contains the MongoDB history archive configuration.
// The archive is disabled unless an address is set.
type DatabaseConfig struct {
	// Address is the MongoDB address in ip:port format.
	Address string `yaml:"address" json:"address" env:"TELEMOCK_DB_ADDRESS"`
	// DBName is the name of the MongoDB database.
	DBName string `yaml:"db_name" json:"db_name" env:"TELEMOCK_DB_NAME"`
	// Username is the MongoDB username.
	Username string `yaml:"username" json:"username" env:"TELEMOCK_DB_USERNAME"`
	// Password is the MongoDB password.
	Password string `yaml:"password" json:"password" env:"TELEMOCK_DB_PASSWORD"`
}

// Validate validates database configuration.
func (cfg DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.DBName, validation.Required.When(cfg.Address != "")),
		validation.Field(&cfg.Username, validation.Required.When(len(cfg.Password) > 0)),
		validation.Field(&cfg.Password, validation.Required.When(len(cfg.Username) > 0)),
	)
}

// Enabled reports whether an archive should be connected at all.
func (cfg DatabaseConfig) Enabled() bool {
	return cfg.Address != ""
}

// Read fills the config from a file merged with environment variables, or
// from the environment alone when no file is given. Only .yaml, .yml and
// .json files are understood; any other extension is rejected before the
// file is touched.
func (cfg *Config) Read(fileName ...string) error {
	if len(fileName) > 0 {
		switch ext := filepath.Ext(fileName[0]); ext {
		case ".yaml", ".yml", ".json":
		default:
			return ErrUnsupportedFormat.New("config file extension %q", ext)
		}
		return cleanenv.ReadConfig(fileName[0], cfg)
	}
	return cleanenv.ReadEnv(cfg)
}

func (cfg *Config) prepareAndValidate() error {
	cfg.Listen = lang.Check(cfg.Listen, "localhost:8081")
	cfg.ChatID = lang.Check(cfg.ChatID, int64(12345))

	cfg.Bot.ID = lang.Check(cfg.Bot.ID, int64(123456789))
	cfg.Bot.FirstName = lang.Check(cfg.Bot.FirstName, "MockBot")
	cfg.Bot.Username = lang.Check(cfg.Bot.Username, "mock_bot")

	cfg.User.ID = lang.Check(cfg.User.ID, cfg.ChatID)
	cfg.User.FirstName = lang.Check(cfg.User.FirstName, "TestUser")
	cfg.User.Username = lang.Check(cfg.User.Username, "test_user")

	cfg.History.File = lang.Check(cfg.History.File, ".telemock_history.json")
	cfg.History.SaveInterval = lang.Check(cfg.History.SaveInterval, 30*time.Second)

	cfg.Web.Listen = lang.Check(cfg.Web.Listen, "localhost:8082")

	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&cfg.History,
		validation.Field(&cfg.History.SaveInterval, validation.Min(time.Second)),
	); err != nil {
		return err
	}

	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Listen, validation.Required),
		validation.Field(&cfg.ChatID, validation.Required, validation.Min(int64(1))),
	)
}

// bot returns the configured bot identity as a wire User.
func (cfg Config) bot() User {
	return User{
		ID:        cfg.Bot.ID,
		IsBot:     true,
		FirstName: cfg.Bot.FirstName,
		Username:  cfg.Bot.Username,
	}
}

// testUser returns the configured default test user as a wire User.
func (cfg Config) testUser() User {
	return User{
		ID:        cfg.User.ID,
		FirstName: cfg.User.FirstName,
		Username:  cfg.User.Username,
	}
}
