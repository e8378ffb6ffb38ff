package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/site/docs/intro.md", false},
		{"/site/docs/.intro.md.swp", true},
		{"/site/docs/intro.md~", true},
		{"/site/docs/#intro.md#", true},
		{"/site/.git/index", true},
		{"/site/Thumbs.db", true},
		{"/site/doclets.json", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignore, shouldIgnoreEvent(tt.path), tt.path)
	}
}

func TestPublishStatus(t *testing.T) {
	s := &publishStatus{}

	err, good := s.current()
	assert.NoError(t, err)
	assert.False(t, good)

	s.setError(errors.New("boom"))
	err, good = s.current()
	assert.Error(t, err)
	assert.False(t, good)

	s.setSuccess()
	err, good = s.current()
	assert.NoError(t, err)
	assert.True(t, good)

	// A later failure keeps goodBuild: the last good site is still served.
	s.setError(errors.New("boom again"))
	_, good = s.current()
	assert.True(t, good)
}

func TestHandlerServesSiteAndStatus(t *testing.T) {
	siteDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "index.html"),
		[]byte("<html><body>hello</body></html>"), 0o644))

	status := &publishStatus{}
	status.setSuccess()
	srv := httptest.NewServer(newHandler(siteDir, nil, status))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/-/status")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHandlerStatusReportsFailure(t *testing.T) {
	status := &publishStatus{}
	status.setError(errors.New("publish exploded"))
	srv := httptest.NewServer(newHandler(t.TempDir(), nil, status))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/-/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDebouncerCoalesces(t *testing.T) {
	req, trigger := newDebouncer(20 * time.Millisecond)

	for i := 0; i < 10; i++ {
		trigger()
	}

	select {
	case <-req:
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}

	// The burst produced exactly one request.
	select {
	case <-req:
		t.Fatal("debouncer fired twice for one burst")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRebuildWorkerUpdatesStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status := &publishStatus{}
	req := make(chan struct{}, 1)
	built := make(chan struct{})

	go func() {
		_ = rebuildWorker(ctx, func(context.Context) error {
			defer close(built)
			return nil
		}, status, req)
	}()

	req <- struct{}{}
	select {
	case <-built:
	case <-time.After(time.Second):
		t.Fatal("rebuild never ran")
	}

	require.Eventually(t, func() bool {
		_, good := status.current()
		return good
	}, time.Second, 10*time.Millisecond)
}
