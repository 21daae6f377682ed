package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveReceipt(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, "receipts/", zap.NewNop())

	t.Run("saves receipt under a fresh directory", func(t *testing.T) {
		stored, err := fs.SaveReceipt(context.Background(), "facture.jpg", []byte("jpeg bytes"))

		require.NoError(t, err)
		assert.Equal(t, "facture.jpg", stored.FileName)
		assert.True(t, strings.HasPrefix(stored.FileURL, "/receipts/"))
		assert.True(t, strings.HasSuffix(stored.FileURL, "/facture.jpg"))

		rel := strings.TrimPrefix(stored.FileURL, "/receipts/")
		content, err := os.ReadFile(filepath.Join(tempDir, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg bytes"), content)
	})

	t.Run("two uploads with the same name do not collide", func(t *testing.T) {
		first, err := fs.SaveReceipt(context.Background(), "same.png", []byte("1"))
		require.NoError(t, err)
		second, err := fs.SaveReceipt(context.Background(), "same.png", []byte("2"))
		require.NoError(t, err)

		assert.NotEqual(t, first.FileURL, second.FileURL)
	})

	t.Run("strips directories from the file name", func(t *testing.T) {
		stored, err := fs.SaveReceipt(context.Background(), "../../etc/evil.png", []byte("x"))

		require.NoError(t, err)
		assert.Equal(t, "evil.png", stored.FileName)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := fs.SaveReceipt(context.Background(), "", []byte("x"))
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_SaveFile(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, "/receipts", zap.NewNop())

	t.Run("creates parent directories", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "deep", "nested", "file.png")

		require.NoError(t, fs.SaveFile(fullPath, []byte("content")))
		assert.FileExists(t, fullPath)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "overwrite", "file.png")

		require.NoError(t, fs.SaveFile(fullPath, []byte("original")))
		require.NoError(t, fs.SaveFile(fullPath, []byte("updated")))

		content, _ := os.ReadFile(fullPath)
		assert.Equal(t, []byte("updated"), content)
	})
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, "/receipts", zap.NewNop())

	t.Run("accepts valid path within base", func(t *testing.T) {
		assert.NoError(t, fs.ValidatePath(filepath.Join(tempDir, "abc", "file.png")))
	})

	t.Run("rejects path outside base directory", func(t *testing.T) {
		err := fs.ValidatePath("/etc/passwd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})

	t.Run("rejects path traversal attempt", func(t *testing.T) {
		err := fs.ValidatePath(filepath.Join(tempDir, "..", "..", "etc", "passwd"))
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_DeleteReceipt(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, "/receipts", zap.NewNop())
	ctx := context.Background()

	t.Run("removes the receipt directory", func(t *testing.T) {
		stored, err := fs.SaveReceipt(ctx, "facture.jpg", []byte("jpeg"))
		require.NoError(t, err)

		require.NoError(t, fs.DeleteReceipt(ctx, stored.FileURL))

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects urls outside the prefix", func(t *testing.T) {
		assert.Error(t, fs.DeleteReceipt(ctx, "/static/logo.png"))
		assert.Error(t, fs.DeleteReceipt(ctx, "/receipts/../../etc/passwd"))
	})
}
