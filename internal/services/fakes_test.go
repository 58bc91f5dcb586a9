package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"swatch-backend/internal/models"
	"swatch-backend/internal/repository"
)

type fakeAccountStore struct {
	mu        sync.Mutex
	byName    map[string]*models.Account
	nextID    int64
	createErr error
	getErr    error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byName: make(map[string]*models.Account)}
}

func (f *fakeAccountStore) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byName[account.Username]; exists {
		return nil, repository.ErrDuplicateUsername
	}
	f.nextID++
	stored := *account
	stored.ID = f.nextID
	stored.IsActive = false
	f.byName[stored.Username] = &stored
	out := stored
	return &out, nil
}

func (f *fakeAccountStore) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	account, ok := f.byName[username]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", username, repository.ErrNotFound)
	}
	out := *account
	return &out, nil
}

func (f *fakeAccountStore) Activate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byName {
		if account.ID == id {
			account.IsActive = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSwatchStore struct {
	mu        sync.Mutex
	records   []*models.SwatchRecord
	createErr error
}

func (f *fakeSwatchStore) Create(_ context.Context, record *models.SwatchRecord) (*models.SwatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *record
	stored.SNo = int64(len(f.records) + 1)
	stored.CreatedAt = "2026-01-01T00:00:00Z"
	f.records = append(f.records, &stored)
	out := stored
	return &out, nil
}

func (f *fakeSwatchStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeSwatchStore) ListAll(context.Context) ([]*models.SwatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.SwatchRecord, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

type recordingPublisher struct {
	published []*models.SwatchRecord
}

func (p *recordingPublisher) PublishSwatch(record *models.SwatchRecord) {
	p.published = append(p.published, record)
}

var errDBDown = errors.New("db down")
