package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"billdocs/internal/logger"
	"billdocs/internal/storage"
	"billdocs/pkg/models"
)

// DefaultProfileKey is the key the web version of the app keeps the profile under.
const DefaultProfileKey = "invoiceGen_businessInfo"

// ProfileStore persists the last used business profile under its own key.
type ProfileStore struct {
	mu   sync.Mutex
	slot storage.Slot
	key  string
	log  zerolog.Logger
}

func NewProfileStore(slot storage.Slot, key string) *ProfileStore {
	if key == "" {
		key = DefaultProfileKey
	}
	return &ProfileStore{
		slot: slot,
		key:  key,
		log:  logger.WithComponent("profile-store"),
	}
}

// Load returns the stored profile, or an empty one when nothing usable is stored.
func (p *ProfileStore) Load(ctx context.Context) (models.BusinessProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, found, err := p.slot.Get(ctx, p.key)
	if err != nil {
		return models.BusinessProfile{}, wrap("LoadProfile", p.key, err)
	}
	if !found || raw == "" {
		return models.BusinessProfile{}, nil
	}

	var profile models.BusinessProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		p.log.Warn().
			Err(fmt.Errorf("%w: %v", ErrCorrupt, err)).
			Str("key", p.key).
			Msg("Business profile unreadable, starting empty")
		return models.BusinessProfile{}, nil
	}
	return profile, nil
}

// Save replaces the stored profile.
func (p *ProfileStore) Save(ctx context.Context, profile models.BusinessProfile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.Marshal(profile)
	if err != nil {
		return wrap("SaveProfile", p.key, fmt.Errorf("encode profile: %w", err))
	}
	if err := p.slot.Set(ctx, p.key, string(data)); err != nil {
		return wrap("SaveProfile", p.key, err)
	}

	p.log.Debug().
		Str("business", profile.Name).
		Bool("has_logo", profile.Logo != "").
		Msg("Business profile saved")
	return nil
}
