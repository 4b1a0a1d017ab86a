package filesystem_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/filesystem"
)

func testMessage() *mailer.Message {
	return &mailer.Message{
		From:    "noreply@example.com",
		To:      []string{"test@mail.com"},
		Subject: "Hello",
		Text:    "world",
	}
}

func TestTransport_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "mail")
	tr := filesystem.New(filesystem.Config{Dir: dir})

	res, err := tr.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, filesystem.Name, res.Transport)
	assert.Equal(t, []string{"test@mail.com"}, res.Accepted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.MessageID, entries[0].Name())
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var got mailer.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *testMessage(), got)
}

func TestTransport_Send_UniqueNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tr := filesystem.New(filesystem.Config{Dir: dir})

	for range 5 {
		_, err := tr.Send(context.Background(), testMessage())
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestTransport_Send_FileMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tr := filesystem.New(filesystem.Config{Dir: dir, FileMode: 0o600})

	res, err := tr.Send(context.Background(), testMessage())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, res.MessageID))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTransport_Send_DirIsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	tr := filesystem.New(filesystem.Config{Dir: path})
	_, err := tr.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrTransportSend)
	assert.ErrorIs(t, err, filesystem.ErrInvalidDir)
}

func TestTransport_InitAndTest(t *testing.T) {
	t.Parallel()

	t.Run("creates directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "out")
		tr := filesystem.New(filesystem.Config{Dir: dir})

		require.NoError(t, tr.Init(context.Background()))
		assert.DirExists(t, dir)
		assert.True(t, tr.Test(context.Background()))
	})

	t.Run("existing directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		tr := filesystem.New(filesystem.Config{Dir: dir})

		require.NoError(t, tr.Init(context.Background()))
		require.NoError(t, tr.Init(context.Background()))
		assert.True(t, tr.Test(context.Background()))
	})

	t.Run("unusable path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		tr := filesystem.New(filesystem.Config{Dir: path})

		err := tr.Init(context.Background())
		assert.ErrorIs(t, err, mailer.ErrTransportInit)
		assert.False(t, tr.Test(context.Background()))
	})
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	tr := filesystem.New(filesystem.Config{})
	assert.Equal(t, filesystem.DefaultDir(), tr.Dir())
	assert.Equal(t, filesystem.Name, tr.Name())
}
