package receipts

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage_SaveRead(t *testing.T) {
	t.Parallel()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("round trips content under a generated key", func(t *testing.T) {
		t.Parallel()
		key, err := storage.Save(ctx, "Facture.JPG", []byte("jpeg-bytes"))
		require.NoError(t, err)
		require.NoError(t, ValidateKey(key))
		require.Equal(t, ".jpg", key[len(key)-4:])

		data, err := storage.Read(key)
		require.NoError(t, err)
		require.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("ignores spaces around the name", func(t *testing.T) {
		t.Parallel()
		key, err := storage.Save(ctx, " receipt.png ", []byte("png"))
		require.NoError(t, err)
		require.NoError(t, ValidateKey(key))
		require.Equal(t, "image/png", ContentType(key))
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		t.Parallel()
		_, err := storage.Save(ctx, "receipt.pdf", []byte("pdf"))
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("returns ErrNotFound for a well formed unknown key", func(t *testing.T) {
		t.Parallel()
		_, err := storage.Read("1b4e28ba-2fa1-11d2-883f-0016d3cca427.png")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.Save(cctx, "receipt.png", []byte("png"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStorage_Delete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storage, err := NewStorage(dir)
	require.NoError(t, err)

	key, err := storage.Save(context.Background(), "receipt.jpeg", []byte("jpeg"))
	require.NoError(t, err)

	require.NoError(t, storage.Delete(key))
	_, err = storage.Read(key)
	require.ErrorIs(t, err, ErrNotFound)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, storage.Delete(key), "deleting twice is fine")
	require.ErrorIs(t, storage.Delete("../etc/passwd"), ErrInvalidKey)
}

func TestExt(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".png", Ext("receipt.png "))
	require.Equal(t, ".jpg", Ext("SCAN.JPG"))
	require.Empty(t, Ext("receipt"))
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		valid bool
	}{
		{"1b4e28ba-2fa1-11d2-883f-0016d3cca427.jpg", true},
		{"1b4e28ba-2fa1-11d2-883f-0016d3cca427.jpeg", true},
		{"1b4e28ba-2fa1-11d2-883f-0016d3cca427.png", true},
		{"1b4e28ba-2fa1-11d2-883f-0016d3cca427.txt", false},
		{"../../etc/passwd.png", false},
		{"receipt.png", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if tt.valid {
				require.NoError(t, ValidateKey(tt.key))
			} else {
				require.ErrorIs(t, ValidateKey(tt.key), ErrInvalidKey)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	require.Equal(t, "image/jpeg", ContentType("a.jpg"))
	require.Equal(t, "image/jpeg", ContentType("a.JPEG"))
	require.Equal(t, "image/png", ContentType("a.png"))
	require.Equal(t, "application/octet-stream", ContentType("a.txt"))
}
