package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	keys   []string
	bodies []string
	err    error
}

func (b *recordingBackend) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.keys = append(b.keys, key)
	b.bodies = append(b.bodies, string(data))
	return "mem://" + key, nil
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "SW100.jpg", FileName("SW100", "photo.jpg"))
	assert.Equal(t, "SW100.png", FileName("SW100", "dir/scan.final.png"))
	assert.Equal(t, "SW100", FileName("SW100", "noext"))
}

func TestValidateCode(t *testing.T) {
	for _, code := range []string{"SW100", "A-1_b", "swatch 7"} {
		assert.NoError(t, ValidateCode(code), code)
	}
	for _, code := range []string{"", "   ", ".", "..", "../etc", `a\b`, "a/b"} {
		assert.ErrorIs(t, ValidateCode(code), ErrInvalidCode, code)
	}
}

func TestIntakeStore_PrimaryOnly(t *testing.T) {
	backend := &recordingBackend{}
	intake := NewIntake(backend, "")

	primaryPath, modelPath, err := intake.Store(context.Background(), "SW100",
		File{Filename: "front.jpg", Body: strings.NewReader("primary")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "mem://SW100.jpg", primaryPath)
	assert.Nil(t, modelPath)
	assert.Equal(t, []string{"SW100.jpg"}, backend.keys)
}

func TestIntakeStore_WithModel(t *testing.T) {
	backend := &recordingBackend{}
	intake := NewIntake(backend, "models")

	primaryPath, modelPath, err := intake.Store(context.Background(), "SW7",
		File{Filename: "a.jpg", Body: strings.NewReader("p")},
		&File{Filename: "b.png", Body: strings.NewReader("m")})
	require.NoError(t, err)

	assert.Equal(t, "mem://SW7.jpg", primaryPath)
	require.NotNil(t, modelPath)
	assert.Equal(t, "mem://models/SW7.png", *modelPath)
	assert.Equal(t, []string{"p", "m"}, backend.bodies)
}

func TestIntakeStore_BackendError(t *testing.T) {
	intake := NewIntake(&recordingBackend{err: errors.New("disk full")}, "")

	_, _, err := intake.Store(context.Background(), "SW1",
		File{Filename: "a.jpg", Body: strings.NewReader("p")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIntakeStore_InvalidCode(t *testing.T) {
	backend := &recordingBackend{}
	intake := NewIntake(backend, "")

	_, _, err := intake.Store(context.Background(), "../escape",
		File{Filename: "a.jpg", Body: strings.NewReader("p")}, nil)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, backend.keys)
}
