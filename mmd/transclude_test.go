package mmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeReadFile(files map[string]string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return []byte(data), nil
		}
		return nil, errors.New("no such file")
	}
}

func TestTranscludeSplicesFileContent(t *testing.T) {
	e := New().Silent()
	e.ReadFile = fakeReadFile(map[string]string{
		"part.md": "included body\n",
	})
	buf := NewBuffer([]byte("before {{part.md}} after\n"))
	transclude(e, buf, ".", &transcludeManifest{}, map[string]bool{})
	assert.Equal(t, "before included body\n after\n", buf.String())
}

func TestTranscludeRecordsManifest(t *testing.T) {
	e := New().Silent()
	e.ReadFile = fakeReadFile(map[string]string{
		"part.md": "x\n",
	})
	buf := NewBuffer([]byte("{{part.md}}\n"))
	manifest := &transcludeManifest{}
	transclude(e, buf, ".", manifest, map[string]bool{})
	require.Len(t, manifest.Files, 1)
	assert.Contains(t, manifest.Files[0], "part.md")
}

func TestTranscludeCycleReplacedWithEmptyText(t *testing.T) {
	e := New().Silent()
	e.ReadFile = fakeReadFile(map[string]string{
		"a.md": "before {{b.md}} after\n",
		"b.md": "loop {{a.md}} back\n",
	})
	buf := NewBuffer([]byte("{{a.md}}\n"))
	done := make(chan struct{})
	go func() {
		transclude(e, buf, ".", &transcludeManifest{}, map[string]bool{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cyclic transclusion did not terminate")
	}
	assert.Contains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "back")
	assert.NotContains(t, buf.String(), "{{a.md}}")
}

func TestTranscludeMissingFileIsEmpty(t *testing.T) {
	e := New().Silent()
	e.ReadFile = fakeReadFile(map[string]string{})
	buf := NewBuffer([]byte("x {{missing.md}} y\n"))
	transclude(e, buf, ".", &transcludeManifest{}, map[string]bool{})
	assert.Equal(t, "x  y\n", buf.String())
}

func TestTranscludeIgnoresTOCMarker(t *testing.T) {
	e := New().Silent()
	buf := NewBuffer([]byte("{{TOC}}\n"))
	transclude(e, buf, ".", &transcludeManifest{}, map[string]bool{})
	assert.Equal(t, "{{TOC}}\n", buf.String())
}

func TestTranscludeBaseMetadataOverridesDirectory(t *testing.T) {
	e := New().Silent()
	e.ReadFile = fakeReadFile(map[string]string{
		"other/part.md": "included body\n",
	})
	buf := NewBuffer([]byte("transclude base: other\n\nbefore {{part.md}} after\n"))
	transclude(e, buf, ".", &transcludeManifest{}, map[string]bool{})
	assert.Contains(t, buf.String(), "included body")
}

func TestRewriteWildcardExtensionDefaultsToTxt(t *testing.T) {
	e := New().Silent()
	assert.Equal(t, "report.txt", rewriteWildcardExtension("report.*", e))
}

func TestRewriteWildcardExtensionFollowsFormatHint(t *testing.T) {
	e := New().Silent().SetTranscludeFormat(FormatHTML)
	assert.Equal(t, "report.html", rewriteWildcardExtension("report.*", e))
}
