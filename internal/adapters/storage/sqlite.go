package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// SessionModel is one run of the tool.
type SessionModel struct {
	ID        string `gorm:"primaryKey"`
	StartedAt time.Time
	Interface string
	Active    string
	Monitor   bool
	Timeout   int
}

// NetworkModel is the GORM model for network records.
type NetworkModel struct {
	ID             uint   `gorm:"primaryKey"`
	SessionID      string `gorm:"uniqueIndex:idx_network_session_bssid"`
	BSSID          string `gorm:"column:bssid;uniqueIndex:idx_network_session_bssid"`
	ESSID          string `gorm:"column:essid;index"`
	Channel        int
	Band           string `gorm:"index"`
	Speed          string
	Power          int
	PowerValid     bool
	Privacy        string
	Encryption     string
	Cipher         string
	Authentication string
	Beacons        int
	DataPackets    int
	FirstSeen      time.Time
	LastSeen       time.Time
	Backend        string
}

// WPSModel stores WPS discovery rows.
type WPSModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	BSSID     string `gorm:"column:bssid"`
	Channel   int
	RSSI      int
	RSSIValid bool
	Version   string
	Locked    bool
	ESSID     string `gorm:"column:essid"`
}

// CaptureModel references a verified handshake capture.
type CaptureModel struct {
	ID          uint   `gorm:"primaryKey"`
	SessionID   string `gorm:"index"`
	BSSID       string `gorm:"column:bssid"`
	File        string
	Timestamp   time.Time
	EAPOLFrames int
}

// AttackResultModel stores a WPS attack outcome.
type AttackResultModel struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index"`
	BSSID      string `gorm:"column:bssid"`
	PIN        string
	Passphrase string
	PMK        string
	LastPIN    string
	StartedAt  time.Time
	Duration   time.Duration
	Reason     string
	Artifact   string
}

// NewSQLiteAdapter opens the database, installs query tracing and migrates
// the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("install tracing: %w", err)
	}
	if err := db.AutoMigrate(&SessionModel{}, &NetworkModel{}, &WPSModel{}, &CaptureModel{}, &AttackResultModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_networks_privacy ON network_models(privacy)").Error; err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

// SaveSession upserts the session header.
func (a *SQLiteAdapter) SaveSession(ctx context.Context, info domain.ScanInfo) error {
	model := SessionModel{
		ID:        info.SessionID,
		StartedAt: info.Timestamp,
		Interface: info.Interface,
		Active:    info.Active,
		Monitor:   info.Monitor,
		Timeout:   info.Timeout,
	}
	return a.db.WithContext(ctx).Save(&model).Error
}

// SaveNetworks upserts the inventory of a session in a single transaction.
func (a *SQLiteAdapter) SaveNetworks(ctx context.Context, sessionID string, networks []domain.NetworkRecord) error {
	if len(networks) == 0 {
		return nil
	}

	models := make([]NetworkModel, len(networks))
	for i, n := range networks {
		models[i] = toNetworkModel(sessionID, n)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "bssid"}},
			UpdateAll: true,
		}).CreateInBatches(models, 100).Error
	})
}

// SaveWPS replaces the WPS list of a session.
func (a *SQLiteAdapter) SaveWPS(ctx context.Context, sessionID string, records []domain.WPSRecord) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&WPSModel{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		models := make([]WPSModel, len(records))
		for i, r := range records {
			models[i] = toWPSModel(sessionID, r)
		}
		return tx.Create(&models).Error
	})
}

func (a *SQLiteAdapter) SaveCapture(ctx context.Context, sessionID string, artifact domain.CaptureArtifact) error {
	model := CaptureModel{
		SessionID:   sessionID,
		BSSID:       artifact.BSSID,
		File:        artifact.File,
		Timestamp:   artifact.Timestamp,
		EAPOLFrames: artifact.EAPOLFrames,
	}
	return a.db.WithContext(ctx).Create(&model).Error
}

func (a *SQLiteAdapter) SaveAttackResult(ctx context.Context, sessionID string, result domain.AttackResult) error {
	model := toAttackModel(sessionID, result)
	return a.db.WithContext(ctx).Create(&model).Error
}

// NetworksForSession returns the stored inventory ordered by BSSID.
func (a *SQLiteAdapter) NetworksForSession(ctx context.Context, sessionID string) ([]domain.NetworkRecord, error) {
	var models []NetworkModel
	if err := a.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("bssid").Find(&models).Error; err != nil {
		return nil, err
	}

	networks := make([]domain.NetworkRecord, len(models))
	for i, m := range models {
		networks[i] = toNetworkRecord(m)
	}
	return networks, nil
}

// Sessions lists stored sessions, newest first.
func (a *SQLiteAdapter) Sessions(ctx context.Context) ([]domain.ScanInfo, error) {
	var models []SessionModel
	if err := a.db.WithContext(ctx).Order("started_at desc").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ScanInfo, len(models))
	for i, m := range models {
		out[i] = domain.ScanInfo{
			SessionID: m.ID,
			Timestamp: m.StartedAt,
			Interface: m.Interface,
			Active:    m.Active,
			Monitor:   m.Monitor,
			Timeout:   m.Timeout,
		}
	}
	return out, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.Storage = (*SQLiteAdapter)(nil)
