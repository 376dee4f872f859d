package uploads_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"testing"

	"aportar/internal/uploads"

	"github.com/stretchr/testify/assert"
)

func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	assert.NoError(t, err)
	_, err = fw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	assert.NoError(t, err)
	return form.File["image"][0]
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"foto.jpg", "foto.jpg"},
		{"mi foto.jpg", "mi_foto.jpg"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\boot.ini", "boot.ini"},
		{"/abs/path/img.png", "img.png"},
		{"..", ""},
		{".hidden", "hidden"},
		{"año_nuevo.png", "a_o_nuevo.png"},
		{"weird%$#name.gif", "weird_name.gif"},
		{"archive..tar..gz", "archive.tar.gz"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, uploads.SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestManager_StoreAndDelete(t *testing.T) {
	mgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)

	name, err := mgr.Store(fileHeader(t, "../sneaky/mi foto.jpg", "image bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "mi_foto.jpg", name)

	data, err := os.ReadFile(mgr.Path(name))
	assert.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	assert.NoError(t, mgr.Delete(name))
	assert.NoFileExists(t, mgr.Path(name))

	// Deleting a missing file is not an error.
	assert.NoError(t, mgr.Delete(name))
	assert.NoError(t, mgr.Delete(""))
}

func TestManager_StoreNilUpload(t *testing.T) {
	mgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)

	name, err := mgr.Store(nil)
	assert.NoError(t, err)
	assert.Empty(t, name)
}

func TestManager_StoreSameNameOverwrites(t *testing.T) {
	mgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)

	_, err = mgr.Store(fileHeader(t, "foto.jpg", "first"))
	assert.NoError(t, err)
	name, err := mgr.Store(fileHeader(t, "foto.jpg", "second"))
	assert.NoError(t, err)
	assert.Equal(t, "foto.jpg", name)

	data, err := os.ReadFile(mgr.Path(name))
	assert.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestManager_StoreUnusableName(t *testing.T) {
	mgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)

	_, err = mgr.Store(fileHeader(t, "..", "payload"))
	assert.Error(t, err)
}

func TestManager_DeleteRefusesUnsafeName(t *testing.T) {
	mgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)

	assert.Error(t, mgr.Delete("../outside.txt"))
}
