package dump

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     string
		input    string
		ext      string
		expected string
	}{
		{"상품 페이지", KindPage, "naver 5012345678", ".html", "page-naver-5012345678.html"},
		{"API 응답", KindResponse, "naver 5012345678 reviews", ".json", "resp-naver-5012345678-reviews.json"},
		{"빈 이름", KindPage, "", ".html", "page-unknown.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := filename(tt.kind, tt.input, tt.ext)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "/")
			assert.NotContains(t, got, "..")
		})
	}
}

func TestFilename_PathCharacters(t *testing.T) {
	t.Parallel()

	got := filename(KindShot, "../../etc/passwd", ".png")
	assert.True(t, strings.HasPrefix(got, "shot-"))
	assert.True(t, strings.HasSuffix(got, "passwd.png"))
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, "..")
}

func TestTruncateByBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncateByBytes("abc", 10))
	assert.Equal(t, "ab", truncateByBytes("abcdef", 2))
	// 한글은 3바이트이므로 4바이트 제한에서는 한 글자만 남아야 합니다.
	assert.Equal(t, "가", truncateByBytes("가나다", 4))
	assert.Equal(t, "", truncateByBytes("가", 2))
}

func TestWriter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(dir, 16)
	require.NoError(t, err)

	w.Page("naver 5012345678", "<html><body>상품</body></html>")
	w.Frame("naver 5012345678", 1, "<p>frame</p>")
	w.Screenshot("naver 5012345678", []byte{0x89, 'P', 'N', 'G'})
	w.Response("naver 5012345678 product", []byte(`{"ok":true}`))

	read := func(name string) []byte {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return data
	}

	assert.Len(t, read("page-naver-5012345678.html"), 16, "최대 크기를 넘는 내용은 잘려야 합니다")
	assert.Equal(t, "<p>frame</p>", string(read("frame-naver-5012345678-1.html")))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, read("shot-naver-5012345678.png"))
	assert.Equal(t, `{"ok":true}`, string(read("resp-naver-5012345678-product.json")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "임시 파일이 남아있으면 안 됩니다: %s", e.Name())
	}
}

func TestWriter_Overwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(dir, 0)
	require.NoError(t, err)

	w.Page("coupang 1", "first")
	w.Page("coupang 1", "second")

	data, err := os.ReadFile(filepath.Join(dir, "page-coupang-1.html"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriter_Nil(t *testing.T) {
	t.Parallel()

	var w *Writer
	assert.NotPanics(t, func() {
		w.Page("x", "y")
		w.Response("x", []byte("{}"))
	})
}

func TestWriter_WriteFailureIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "dumps"), 0)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(w.Dir()))

	assert.NotPanics(t, func() {
		w.Page("naver 1", "<html></html>")
	})
}

func TestNew_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	w, err := New(dir, 0)
	require.NoError(t, err)

	info, err := os.Stat(w.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
