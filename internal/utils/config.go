package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver           string
	Host             string
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	SQLitePath       string
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return "host=" + c.Host + " user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" port=" + c.Port + " sslmode=disable TimeZone=UTC"
}

type ServerConfig struct {
	Port     string
	Env      string
	Timezone string
}

type AdminConfig struct {
	Username string
	Password string
}

type TokenConfig struct {
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
}

// CameraConfig tunes the frame source. Driver is "rpicam" on the appliance and
// "synthetic" for development machines without a camera module.
type CameraConfig struct {
	Driver         string        `yaml:"driver"`
	Command        string        `yaml:"command"`
	Index          int           `yaml:"index"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	KillStale      bool          `yaml:"kill_stale"`
}

type SessionConfig struct {
	AlignmentDuration time.Duration `yaml:"alignment_duration"`
	CaptureFrames     int           `yaml:"capture_frames"`
	Ceiling           time.Duration `yaml:"ceiling"`
	PreviewInterval   time.Duration `yaml:"preview_interval"`
	DefaultGroupID    uint          `yaml:"default_group_id"`
}

type RecognitionConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
	ModelPath     string  `yaml:"model_path"`
	FaceFraction  float64 `yaml:"face_fraction"`
}

type EnrollmentConfig struct {
	DatasetDir    string        `yaml:"dataset_dir"`
	BurstFrames   int           `yaml:"burst_frames"`
	BurstInterval time.Duration `yaml:"burst_interval"`
	AutoTrain     bool          `yaml:"auto_train"`
}

type TrainingConfig struct {
	Workers int
}

type FeedbackConfig struct {
	SuccessCooldown   time.Duration
	DuplicateCooldown time.Duration
	UnknownCooldown   time.Duration
}

type Config struct {
	Database    *DatabaseConfig
	Server      *ServerConfig
	Admin       *AdminConfig
	Token       *TokenConfig
	Camera      *CameraConfig
	Session     *SessionConfig
	Recognition *RecognitionConfig
	Enrollment  *EnrollmentConfig
	Training    *TrainingConfig
	Feedback    *FeedbackConfig
}

// tuning is the subset of Config that can be overridden from APPLIANCE_CONFIG.
type tuning struct {
	Camera      *CameraConfig      `yaml:"camera"`
	Session     *SessionConfig     `yaml:"session"`
	Recognition *RecognitionConfig `yaml:"recognition"`
	Enrollment  *EnrollmentConfig  `yaml:"enrollment"`
}

func LoadConfig(dotenvPath string) (*Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	dbCfg := &DatabaseConfig{
		Driver:           get("DB_DRIVER", "postgres"),
		Host:             get("POSTGRES_HOST", "localhost"),
		Port:             get("POSTGRES_PORT", "5432"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       get("POSTGRES_DB", "attendance_db"),
		SQLitePath:       get("SQLITE_PATH", "attendance.db"),
	}
	serverCfg := &ServerConfig{
		Port:     get("SERVER_PORT", "5000"),
		Env:      get("APP_ENV", "prod"),
		Timezone: get("APP_TIMEZONE", "Local"),
	}
	adminCfg := &AdminConfig{
		Username: get("ADMIN_USERNAME", "admin"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	tokenCfg := &TokenConfig{
		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 8*time.Hour),
	}
	cameraCfg := &CameraConfig{
		Driver:         get("CAMERA_DRIVER", "rpicam"),
		Command:        get("CAMERA_COMMAND", "rpicam-vid"),
		Index:          getInt("CAMERA_INDEX", 0),
		Width:          getInt("CAMERA_WIDTH", 640),
		Height:         getInt("CAMERA_HEIGHT", 480),
		CaptureTimeout: getDuration("CAMERA_CAPTURE_TIMEOUT", 4*time.Second),
		KillStale:      getBool("CAMERA_KILL_STALE", true),
	}
	alignment := getDuration("SESSION_ALIGNMENT", 10*time.Second)
	sessionCfg := &SessionConfig{
		AlignmentDuration: alignment,
		CaptureFrames:     getInt("SESSION_CAPTURE_FRAMES", 5),
		Ceiling:           getDuration("SESSION_CEILING", 6*alignment),
		PreviewInterval:   getDuration("SESSION_PREVIEW_INTERVAL", 500*time.Millisecond),
		DefaultGroupID:    uint(getInt("SESSION_DEFAULT_GROUP_ID", 1)),
	}
	recognitionCfg := &RecognitionConfig{
		MinConfidence: getFloat("RECOGNITION_MIN_CONFIDENCE", 0.5),
		ModelPath:     get("RECOGNITION_MODEL_PATH", "model.msgpack"),
		FaceFraction:  getFloat("RECOGNITION_FACE_FRACTION", 0.6),
	}
	enrollmentCfg := &EnrollmentConfig{
		DatasetDir:    get("ENROLLMENT_DATASET_DIR", "dataset"),
		BurstFrames:   getInt("ENROLLMENT_BURST_FRAMES", 20),
		BurstInterval: getDuration("ENROLLMENT_BURST_INTERVAL", 200*time.Millisecond),
		AutoTrain:     getBool("ENROLLMENT_AUTO_TRAIN", false),
	}
	trainingCfg := &TrainingConfig{
		Workers: getInt("TRAINING_WORKERS", 2),
	}
	feedbackCfg := &FeedbackConfig{
		SuccessCooldown:   getDuration("FEEDBACK_SUCCESS_COOLDOWN", 5*time.Second),
		DuplicateCooldown: getDuration("FEEDBACK_DUPLICATE_COOLDOWN", 5*time.Second),
		UnknownCooldown:   getDuration("FEEDBACK_UNKNOWN_COOLDOWN", 3*time.Second),
	}

	cfg := &Config{
		Database:    dbCfg,
		Server:      serverCfg,
		Admin:       adminCfg,
		Token:       tokenCfg,
		Camera:      cameraCfg,
		Session:     sessionCfg,
		Recognition: recognitionCfg,
		Enrollment:  enrollmentCfg,
		Training:    trainingCfg,
		Feedback:    feedbackCfg,
	}

	if path := os.Getenv("APPLIANCE_CONFIG"); path != "" {
		if err := cfg.applyTuning(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyTuning decodes the YAML file on top of the already loaded sections, so
// keys missing from the file keep their environment values.
func (c *Config) applyTuning(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read appliance config: %w", err)
	}
	t := tuning{
		Camera:      c.Camera,
		Session:     c.Session,
		Recognition: c.Recognition,
		Enrollment:  c.Enrollment,
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("parse appliance config: %w", err)
	}
	// a present but empty section decodes to nil
	sections := []struct {
		name  string
		empty bool
	}{
		{"camera", t.Camera == nil},
		{"session", t.Session == nil},
		{"recognition", t.Recognition == nil},
		{"enrollment", t.Enrollment == nil},
	}
	for _, sec := range sections {
		if sec.empty {
			return fmt.Errorf("parse appliance config: section %q is empty", sec.name)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Database.Driver != "postgres" && c.Database.Driver != "sqlite":
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	case c.Session.CaptureFrames < 1 || c.Session.CaptureFrames > 9:
		return fmt.Errorf("session capture frames must be between 1 and 9, got %d", c.Session.CaptureFrames)
	case c.Session.AlignmentDuration <= 0:
		return errors.New("session alignment duration must be positive")
	case c.Session.Ceiling <= c.Session.AlignmentDuration:
		return errors.New("session ceiling must exceed the alignment duration")
	case c.Recognition.MinConfidence < 0 || c.Recognition.MinConfidence > 1:
		return fmt.Errorf("recognition min confidence must be within [0,1], got %v", c.Recognition.MinConfidence)
	}
	return nil
}

// Location resolves the appliance time zone used for attendance dates.
func (c *ServerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}
