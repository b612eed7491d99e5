package file_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/infinitescroll/image-store/internal/storage"
	"github.com/infinitescroll/image-store/internal/storage/file"

	"testing"
)

func TestFile(t *testing.T) {
	ctx := context.Background()

	provider, err := file.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("\xff\xd8\xff\xe0 not really a jpeg")

	id, err := provider.Put(ctx, "foo.jpg", bytes.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Get an image by id", func(t *testing.T) {
		object, err := provider.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(object, &storage.Object{ID: id, FileName: "foo.jpg", Content: content}) {
			t.Errorf("image data doesn't match %+v", object)
		}
	})

	t.Run("Returns error on a nonexistant path", func(t *testing.T) {
		_, err := file.New("")
		if err == nil {
			t.FailNow()
		}
	})

	t.Run("Returns error on a nonexistant image", func(t *testing.T) {
		_, err := provider.Get(ctx, "1e4f0e40-6dc3-4c4e-9d5b-6c8f5bfa2b1d")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("wrong error %v", err)
		}
	})

	t.Run("Returns error on a malformed id", func(t *testing.T) {
		_, err := provider.Get(ctx, "../../etc")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("wrong error %v", err)
		}
	})

	t.Run("Rejects file names with a path", func(t *testing.T) {
		_, err := provider.Put(ctx, "../foo.jpg", strings.NewReader("foo"))
		if err == nil {
			t.FailNow()
		}
	})

	t.Run("Deletes an image", func(t *testing.T) {
		otherID, err := provider.Put(ctx, "bar.jpg", strings.NewReader("bar"))
		if err != nil {
			t.Fatal(err)
		}

		if err := provider.Delete(ctx, otherID); err != nil {
			t.Fatal(err)
		}

		if _, err := provider.Get(ctx, otherID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("wrong error %v", err)
		}

		if err := provider.Delete(ctx, otherID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("wrong error %v", err)
		}
	})
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "images")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	provider, err := file.New(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := provider.Ping(ctx); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if err := os.RemoveAll(path); err != nil {
		t.Fatal(err)
	}

	if err := provider.Ping(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wrong error %v", err)
	}
}

func TestRandom(t *testing.T) {
	ctx := context.Background()

	provider, err := file.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	stored := map[string][]byte{}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		content := []byte(strings.Repeat(name, 10))
		id, err := provider.Put(ctx, name, bytes.NewReader(content))
		if err != nil {
			t.Fatal(err)
		}

		stored[id] = content
	}

	tests := []struct {
		Count    int
		Expected int
	}{
		{0, 0},
		{-1, 0},
		{1, 1},
		{3, 3},
		{5, 3},
	}

	for _, test := range tests {
		objects, err := provider.Random(ctx, test.Count)
		if err != nil {
			t.Fatalf("count %d: %s", test.Count, err)
		}

		if len(objects) != test.Expected {
			t.Errorf("count %d: wrong number of images %d", test.Count, len(objects))
		}

		seen := map[string]bool{}
		for _, object := range objects {
			if seen[object.ID] {
				t.Errorf("count %d: duplicate image %s", test.Count, object.ID)
			}
			seen[object.ID] = true

			if !bytes.Equal(object.Content, stored[object.ID]) {
				t.Errorf("count %d: wrong content for %s", test.Count, object.ID)
			}
		}
	}
}
