package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swatch-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSwatchService(t *testing.T, store *fakeSwatchStore, pub Publisher) (*SwatchService, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "swach image")
	backend, err := storage.NewLocalBackend(base, "")
	require.NoError(t, err)
	return NewSwatchService(store, storage.NewIntake(backend, ""), pub), base
}

func TestUpload_SameCodeTwice(t *testing.T) {
	store := &fakeSwatchStore{}
	pub := &recordingPublisher{}
	svc, base := newTestSwatchService(t, store, pub)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "SW100", storage.File{Filename: "scan.jpg", Body: strings.NewReader("v1")}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.SwatchPath, "SW100.jpg"))
	assert.Equal(t, "Pending", first.Status)
	assert.Nil(t, first.ModelPath)

	second, err := svc.Upload(ctx, "SW100", storage.File{Filename: "rescan.jpg", Body: strings.NewReader("v2")}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.SwatchPath, second.SwatchPath)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	data, err := os.ReadFile(filepath.Join(base, "SW100.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	assert.Len(t, pub.published, 2)
}

func TestUpload_WithModel(t *testing.T) {
	svc, base := newTestSwatchService(t, &fakeSwatchStore{}, nil)

	record, err := svc.Upload(context.Background(), "SW200",
		storage.File{Filename: "a.jpg", Body: strings.NewReader("p")},
		&storage.File{Filename: "model.png", Body: strings.NewReader("m")})
	require.NoError(t, err)

	require.NotNil(t, record.ModelPath)
	assert.Equal(t, filepath.Join(base, storage.DefaultModelDir, "SW200.png"), *record.ModelPath)
	assert.FileExists(t, *record.ModelPath)
}

func TestUpload_StoreErrorLeavesFile(t *testing.T) {
	store := &fakeSwatchStore{createErr: errDBDown}
	pub := &recordingPublisher{}
	svc, base := newTestSwatchService(t, store, pub)

	_, err := svc.Upload(context.Background(), "SW300", storage.File{Filename: "a.jpg", Body: strings.NewReader("p")}, nil)
	assert.ErrorIs(t, err, errDBDown)
	assert.FileExists(t, filepath.Join(base, "SW300.jpg"))
	assert.Empty(t, pub.published)
}

func TestUpload_InvalidCode(t *testing.T) {
	store := &fakeSwatchStore{}
	svc, _ := newTestSwatchService(t, store, nil)

	_, err := svc.Upload(context.Background(), "../x", storage.File{Filename: "a.jpg", Body: strings.NewReader("p")}, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidCode)
	assert.Empty(t, store.records)
}

func TestListAll_NewestFirst(t *testing.T) {
	svc, _ := newTestSwatchService(t, &fakeSwatchStore{}, nil)
	ctx := context.Background()

	for _, code := range []string{"B", "A", "C"} {
		_, err := svc.Upload(ctx, code, storage.File{Filename: "x.jpg", Body: strings.NewReader(code)}, nil)
		require.NoError(t, err)
	}

	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.Greater(t, records[i-1].SNo, records[i].SNo)
	}
	assert.Equal(t, "C", records[0].SwachCode)
}
