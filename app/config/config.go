package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

// DefaultThreshold is the similarity ratio used when quiz.threshold is omitted.
const DefaultThreshold = 0.7

type Config struct {
	Log      Log      `yaml:"log"`
	Storage  Storage  `yaml:"storage"`
	Quiz     Quiz     `yaml:"quiz"`
	Corpus   Corpus   `yaml:"corpus"`
	Engine   Engine   `yaml:"engine"`
	Telegram Telegram `yaml:"telegram"`
	VK       VK       `yaml:"vk"`
	Twitch   Twitch   `yaml:"twitch"`
	HTTP     HTTP     `yaml:"http"`
}

type Log struct {
	// Minimum level: debug, info, warn, error
	Level string `yaml:"level" example:"info" validate:"oneof=debug info warn error"`
	// Telegram alerting config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send alerts to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type Storage struct {
	// Backend: redis, sql or memory
	Driver string `yaml:"driver" example:"redis" validate:"oneof=redis sql memory"`
	// Prefix of session keys, the full key is <prefix><channel>_<user id>
	SessionPrefix string `yaml:"session_prefix" example:"user_"`
	Redis         Redis  `yaml:"redis"`
	SQL           SQL    `yaml:"sql"`
}

type Redis struct {
	// Redis address
	Addr string `yaml:"addr" example:"localhost:6379" validate:"required"`
	// Redis password
	Password string `yaml:"password"`
	// Database holding question -> answer pairs
	TasksDB int `yaml:"tasks_db" example:"1" validate:"min=0"`
	// Database holding user sessions
	UsersDB int `yaml:"users_db" example:"2" validate:"min=0"`
	// Per-command timeout
	Timeout time.Duration `yaml:"timeout" example:"5s"`
}

type SQL struct {
	// sqlite or postgres
	Driver string `yaml:"driver" example:"sqlite" validate:"oneof=sqlite postgres"`
	// Data source name
	DSN string `yaml:"dsn" example:"file:quizbot.db?_pragma=busy_timeout(5000)"`
}

type Quiz struct {
	// Minimal similarity ratio accepted as a correct answer, 0.7 when omitted
	Threshold *float64 `yaml:"threshold" example:"0.7" validate:"required,min=0,max=1"`
	Buttons   Buttons `yaml:"buttons"`
	Texts     Texts   `yaml:"texts"`
}

type Buttons struct {
	NewQuestion string `yaml:"new_question" example:"Новый вопрос" validate:"required"`
	GiveUp      string `yaml:"give_up" example:"Сдаться" validate:"required"`
	Score       string `yaml:"score" example:"Мой счёт" validate:"required"`
}

// Texts are reply templates. Placeholders: {user}, {help}, {successes},
// {give_ups}, {answer}, {next}.
type Texts struct {
	Greeting    string `yaml:"greeting" validate:"required"`
	Help        string `yaml:"help" validate:"required"`
	Score       string `yaml:"score" validate:"required"`
	Farewell    string `yaml:"farewell" validate:"required"`
	Next        string `yaml:"next" validate:"required"`
	Correct     string `yaml:"correct" validate:"required"`
	Incorrect   string `yaml:"incorrect" validate:"required"`
	GiveUp      string `yaml:"give_up" validate:"required"`
	NoQuestion  string `yaml:"no_question" validate:"required"`
	EmptyCorpus string `yaml:"empty_corpus" validate:"required"`
	Unavailable string `yaml:"unavailable" validate:"required"`
}

type Corpus struct {
	// Directory with quiz files
	Dir string `yaml:"dir" example:"quiz_tasks"`
	// Charset of quiz files: koi8-r or utf-8
	Encoding string `yaml:"encoding" example:"koi8-r" validate:"oneof=koi8-r utf-8"`
	// Regular expression matching the first line of a question block
	QuestionPattern string `yaml:"question_pattern" example:"^Вопрос.+\n" validate:"required"`
	// Regular expression matching the first line of an answer block
	AnswerPattern string `yaml:"answer_pattern" example:"^Ответ.+\n" validate:"required"`
	// Literal marking questions that need a picture
	PictureIndicator string `yaml:"picture_indicator" example:"(pic:" validate:"required"`
	// Files parsed in parallel
	Workers int `yaml:"workers" example:"4" validate:"min=1"`
}

type Engine struct {
	// Inbound queue capacity per shard
	QueueSize int `yaml:"queue_size" example:"64" validate:"min=1"`
	// Number of serial workers, events of one user always land on the same one
	Shards int `yaml:"shards" example:"8" validate:"min=1"`
	// Pause before restarting a failed channel loop
	RetryTimeout time.Duration `yaml:"retry_timeout" example:"10s"`
}

type Telegram struct {
	Enabled bool `yaml:"enabled"`
	// Bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required_if=Enabled true"`
}

type VK struct {
	Enabled bool `yaml:"enabled"`
	// Community access token
	Token string `yaml:"token" validate:"required_if=Enabled true"`
	// Community ID the long poll is bound to
	GroupID int `yaml:"group_id" example:"123456789" validate:"required_if=Enabled true"`
}

type Twitch struct {
	Enabled bool `yaml:"enabled"`
	// ClientID of the twitch application
	ClientID string `yaml:"client_id" example:"a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p" validate:"required_if=Enabled true"`
	// Client secret of the twitch application
	ClientSecret string `yaml:"client_secret" example:"abc123def456ghi789jkl012mno345pqr678stu901" validate:"required_if=Enabled true"`
	// Username of the bot account
	Username string `yaml:"username" example:"QuizBot" validate:"required_if=Enabled true"`
	// Channel the bot plays in
	Channel string `yaml:"channel" example:"PogChamp123" validate:"required_if=Enabled true"`
	// User refresh token of the bot account
	RefreshToken string `yaml:"refresh_token" validate:"required_if=Enabled true"`
	// Chat command prefix
	CommandPrefix string `yaml:"command_prefix" example:"!"`
}

type HTTP struct {
	Enabled bool `yaml:"enabled"`
	// Listen address
	Addr string `yaml:"addr" example:":8080" validate:"required_if=Enabled true"`
}

// Load reads .env (if present) and the YAML file at path, expanding ${VAR}
// references before parsing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var result Config

	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	applyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "redis"
	}
	if cfg.Storage.SessionPrefix == "" {
		cfg.Storage.SessionPrefix = "user_"
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Redis.TasksDB == 0 && cfg.Storage.Redis.UsersDB == 0 {
		cfg.Storage.Redis.TasksDB = 1
		cfg.Storage.Redis.UsersDB = 2
	}
	if cfg.Storage.Redis.Timeout == 0 {
		cfg.Storage.Redis.Timeout = 5 * time.Second
	}
	if cfg.Storage.SQL.Driver == "" {
		cfg.Storage.SQL.Driver = "sqlite"
	}

	if cfg.Quiz.Threshold == nil {
		threshold := DefaultThreshold
		cfg.Quiz.Threshold = &threshold
	}
	defaultButtons(&cfg.Quiz.Buttons)
	defaultTexts(&cfg.Quiz.Texts, cfg.Quiz.Buttons)

	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "quiz_tasks"
	}
	if cfg.Corpus.Encoding == "" {
		cfg.Corpus.Encoding = "koi8-r"
	}
	if cfg.Corpus.QuestionPattern == "" {
		cfg.Corpus.QuestionPattern = `^Вопрос.+\n`
	}
	if cfg.Corpus.AnswerPattern == "" {
		cfg.Corpus.AnswerPattern = `^Ответ.+\n`
	}
	if cfg.Corpus.PictureIndicator == "" {
		cfg.Corpus.PictureIndicator = "(pic:"
	}
	if cfg.Corpus.Workers == 0 {
		cfg.Corpus.Workers = 4
	}

	if cfg.Engine.QueueSize == 0 {
		cfg.Engine.QueueSize = 64
	}
	if cfg.Engine.Shards == 0 {
		cfg.Engine.Shards = 8
	}
	if cfg.Engine.RetryTimeout == 0 {
		cfg.Engine.RetryTimeout = 10 * time.Second
	}

	if cfg.Twitch.CommandPrefix == "" {
		cfg.Twitch.CommandPrefix = "!"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}
