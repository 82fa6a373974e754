package gitsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"conftrail/archive"
)

var (
	// ErrSyncInProgress is returned when a synchronization cycle is already
	// running. Importer runs never overlap.
	ErrSyncInProgress = errors.New("synchronization already in progress")

	// ErrSyncFailed is returned when both the clone and the pull fallback
	// fail for the configurations repository.
	ErrSyncFailed = errors.New("git synchronization failed")
)

// Store is the archive write surface the importer needs. *database.DBClient
// satisfies it.
type Store interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error
	UpsertDevice(ctx context.Context, tx pgx.Tx, name, ipAddress, subtype string, longitude, latitude float64) (uuid.UUID, *archive.Timestamp, error)
	InsertSnapshot(ctx context.Context, tx pgx.Tx, deviceID uuid.UUID, ts archive.Timestamp, config string) error
	SetCurrentSnapshot(ctx context.Context, tx pgx.Tx, deviceID uuid.UUID, ts archive.Timestamp) error
}

// Service pulls the configurations repository and feeds every device's
// captured configuration into the archive, one batch transaction per cycle.
type Service struct {
	repoURL   string
	localPath string
	db        Store

	mu sync.Mutex // guards the single in-flight cycle
}

func NewService(repoURL, localPath string, db Store) *Service {
	return &Service{
		repoURL:   repoURL,
		localPath: localPath,
		db:        db,
	}
}

// Sync runs one synchronization cycle: refresh the checkout, then archive
// every device's configuration in a single transaction. A second caller gets
// ErrSyncInProgress instead of an interleaved run.
func (s *Service) Sync(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrSyncInProgress
	}
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	configs, err := loadCheckout(s.localPath)
	if err != nil {
		return err
	}
	return s.ingest(ctx, configs)
}

// refresh tries a fresh clone first; an existing checkout makes the clone
// fail, in which case a pull brings it up to date. One retry tier, no more.
func (s *Service) refresh(ctx context.Context) error {
	cloneErr := gitClone(ctx, s.repoURL, s.localPath)
	if cloneErr == nil {
		return nil
	}
	log.Printf("Cannot clone configurations repository %s (%v), trying pull", s.repoURL, cloneErr)

	if pullErr := gitPull(ctx, s.localPath); pullErr != nil {
		return fmt.Errorf("%w: repository %s: clone: %v; pull: %v",
			ErrSyncFailed, s.repoURL, cloneErr, pullErr)
	}
	return nil
}

// ingest archives a batch of device configurations. The whole batch shares
// one transaction and one commit. A timestamp already archived is a tolerated
// re-import: the text is not stored twice, but the current pointer still moves
// to the checkout's timestamp, since the checkout is the latest word on which
// version is current.
func (s *Service) ingest(ctx context.Context, configs []DeviceConfig) error {
	if len(configs) == 0 {
		log.Printf("Synchronization found no device configurations in %s", s.localPath)
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.db.RollbackTx(ctx, tx)

	recorded := 0
	for _, config := range configs {
		deviceID, _, err := s.db.UpsertDevice(ctx, tx,
			config.Name, config.IPAddress, config.Subtype, config.Longitude, config.Latitude)
		if err != nil {
			return fmt.Errorf("device %q: %w", config.Name, err)
		}

		err = s.db.InsertSnapshot(ctx, tx, deviceID, config.RecordedAt, config.Config)
		duplicate := errors.Is(err, archive.ErrDuplicateTimestamp)
		if duplicate {
			log.Printf("Device %q already archived at %s, not storing again", config.Name, config.RecordedAt)
		} else if err != nil {
			return fmt.Errorf("device %q: %w", config.Name, err)
		}

		if err := s.db.SetCurrentSnapshot(ctx, tx, deviceID, config.RecordedAt); err != nil {
			return fmt.Errorf("device %q: %w", config.Name, err)
		}
		if !duplicate {
			recorded++
		}
	}

	if err := s.db.CommitTx(ctx, tx); err != nil {
		return err
	}
	log.Printf("Synchronization recorded %d of %d device configurations", recorded, len(configs))
	return nil
}
