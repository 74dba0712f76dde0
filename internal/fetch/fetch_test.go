package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	// Create test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forms/d/abc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/forms/d/abc/viewform", http.StatusFound)
	})
	mux.HandleFunc("/forms/d/abc/viewform", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<form></form>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	result, err := URL(context.Background(), server.URL+"/forms/d/abc", nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/forms/d/abc", result.URL)
	assert.Equal(t, server.URL+"/forms/d/abc/viewform", result.FinalURL)
}

func TestURL_SignInRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/viewform", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ServiceLogin", http.StatusFound)
	})
	mux.HandleFunc("/ServiceLogin", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Sign in</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	signInHosts["127.0.0.1"] = true
	defer delete(signInHosts, "127.0.0.1")

	result, err := URL(context.Background(), server.URL+"/viewform", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignInRequired)
	require.NotNil(t, result)
	assert.Equal(t, server.URL+"/ServiceLogin", result.FinalURL)
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "form heading",
			html: `<html><head><title>Google Forms</title></head><body>
				<div role="heading" aria-level="1">  Placement
				Drive 2025 </div></body></html>`,
			want: "Placement Drive 2025",
		},
		{
			name: "vendor header",
			html: `<div class="freebirdFormviewerViewHeaderTitle">Internship Form</div>`,
			want: "Internship Form",
		},
		{
			name: "document title",
			html: `<html><head><title> Survey </title></head><body></body></html>`,
			want: "Survey",
		},
		{
			name: "nothing",
			html: `<p>hello</p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Title(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasQuestions(t *testing.T) {
	assert.True(t, HasQuestions(`<div role="listitem"><input type="text"></div>`))
	assert.True(t, HasQuestions(`<textarea></textarea>`))
	assert.False(t, HasQuestions(`<form><input type="hidden" name="fbzx"></form>`))
	assert.False(t, HasQuestions(`<div id="root"></div>`))
	assert.True(t, NeedsRender(`<div id="root"></div>`))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://docs.google.com/forms/d/e/abc/viewform"))
	assert.True(t, IsURL("http://localhost:8080/form"))
	assert.False(t, IsURL("testdata/form.html"))
	assert.False(t, IsURL("/tmp/form.html"))
	assert.False(t, IsURL("file:///tmp/form.html"))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.html")
	require.NoError(t, os.WriteFile(path, []byte(`<div role="listitem"></div>`), 0644))

	src, err := Load(context.Background(), path, false, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, path, src.Location)
	assert.Contains(t, src.HTML, "listitem")
	assert.False(t, src.Rendered)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.html"), false, 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_URLWithControls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<div role="listitem"><div role="heading">Name</div><input type="text"></div>`))
	}))
	defer server.Close()

	src, err := Load(context.Background(), server.URL, false, time.Second, nil)
	require.NoError(t, err)
	assert.False(t, src.Rendered)
	assert.Contains(t, src.HTML, "Name")
}
