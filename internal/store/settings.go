package store

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Well-known settings keys.
const (
	KeyMode            = "mode"
	KeyCameraID        = "camera_id"
	KeyMirror          = "mirror"
	KeyEnabled         = "enabled"
	KeyMotionThreshold = "motion_threshold"
)

// SettingsRepository provides typed access to the key-value settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores a setting value, replacing any previous value for the key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// GetInt retrieves a setting as an integer.
func (r *SettingsRepository) GetInt(key string) (int, error) {
	value, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// SetInt stores an integer setting.
func (r *SettingsRepository) SetInt(key string, value int) error {
	return r.Set(key, strconv.Itoa(value))
}

// GetBool retrieves a setting as a boolean.
func (r *SettingsRepository) GetBool(key string) (bool, error) {
	value, err := r.Get(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// SetBool stores a boolean setting.
func (r *SettingsRepository) SetBool(key string, value bool) error {
	return r.Set(key, strconv.FormatBool(value))
}

// GetFloat retrieves a setting as a float.
func (r *SettingsRepository) GetFloat(key string) (float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetFloat stores a float setting.
func (r *SettingsRepository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// Settings is the aggregate application configuration persisted across runs.
type Settings struct {
	Mode            string  `json:"mode"`
	CameraID        int     `json:"camera_id"`
	Mirror          bool    `json:"mirror"`
	Enabled         bool    `json:"enabled"`
	MotionThreshold float64 `json:"motion_threshold"`
}

// DefaultSettings returns the configuration used on first run.
func DefaultSettings() Settings {
	return Settings{
		Mode:            "face-filter",
		CameraID:        0,
		Mirror:          true,
		Enabled:         true,
		MotionThreshold: 1.0,
	}
}

// Load reads the aggregate settings, falling back to the default for any
// key that has never been written.
func (r *SettingsRepository) Load() (Settings, error) {
	s := DefaultSettings()

	if v, err := r.Get(KeyMode); err == nil {
		s.Mode = v
	} else if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	if v, err := r.GetInt(KeyCameraID); err == nil {
		s.CameraID = v
	} else if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	if v, err := r.GetBool(KeyMirror); err == nil {
		s.Mirror = v
	} else if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	if v, err := r.GetBool(KeyEnabled); err == nil {
		s.Enabled = v
	} else if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	if v, err := r.GetFloat(KeyMotionThreshold); err == nil {
		s.MotionThreshold = v
	} else if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	return s, nil
}

// Save persists the aggregate settings.
func (r *SettingsRepository) Save(s Settings) error {
	if err := r.Set(KeyMode, s.Mode); err != nil {
		return err
	}
	if err := r.SetInt(KeyCameraID, s.CameraID); err != nil {
		return err
	}
	if err := r.SetBool(KeyMirror, s.Mirror); err != nil {
		return err
	}
	if err := r.SetBool(KeyEnabled, s.Enabled); err != nil {
		return err
	}
	return r.SetFloat(KeyMotionThreshold, s.MotionThreshold)
}
