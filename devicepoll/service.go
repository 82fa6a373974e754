package devicepoll

import (
	"context"
	"fmt"
	"log"
	"time"

	"conftrail/archive"
	"conftrail/database"
)

// Service captures configurations from every reachable inventory device and
// archives them under a capture-time timestamp. Devices that cannot be
// reached are logged and skipped; the batch carries on.
type Service struct {
	db      *database.DBClient
	fetcher *Fetcher
}

func NewService(db *database.DBClient, fetcher *Fetcher) *Service {
	return &Service{db: db, fetcher: fetcher}
}

func (s *Service) PollDevices(ctx context.Context) error {
	devices, err := s.db.ListDevices(ctx)
	if err != nil {
		return err
	}

	type capture struct {
		device database.DeviceRecord
		text   string
	}
	var captures []capture
	for _, device := range devices {
		if device.IPAddress == "" {
			continue
		}
		text, err := s.fetcher.FetchConfiguration(device.IPAddress)
		if err != nil {
			log.Printf("Cannot fetch configuration from %q (%s): %v", device.Name, device.IPAddress, err)
			continue
		}
		captures = append(captures, capture{device: device, text: text})
	}
	if len(captures) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer s.db.RollbackTx(ctx, tx)

	for _, c := range captures {
		ts := archive.FromTime(time.Now())
		if err := s.db.InsertSnapshot(ctx, tx, c.device.DeviceID, ts, c.text); err != nil {
			return fmt.Errorf("device %q: %w", c.device.Name, err)
		}
		if err := s.db.SetCurrentSnapshot(ctx, tx, c.device.DeviceID, ts); err != nil {
			return fmt.Errorf("device %q: %w", c.device.Name, err)
		}
	}
	if err := s.db.CommitTx(ctx, tx); err != nil {
		return err
	}
	log.Printf("Archived live configurations for %d devices", len(captures))
	return nil
}
