package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	latest, update, err := Check(ctx, serve(t, 200, `{"version": "`+Version+`"}`))
	require.NoError(t, err)
	assert.Equal(t, Version, latest)
	assert.False(t, update)

	latest, update, err = Check(ctx, serve(t, 200, `{"version": "99.0.0"}`))
	require.NoError(t, err)
	assert.Equal(t, "99.0.0", latest)
	assert.True(t, update)
}

func TestCheckErrors(t *testing.T) {
	ctx := context.Background()
	for name, url := range map[string]string{
		"status":  serve(t, 404, "missing"),
		"json":    serve(t, 200, "<html>"),
		"empty":   serve(t, 200, `{}`),
		"no host": "http://127.0.0.1:1/version.json",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Check(ctx, url)
			assert.Error(t, err)
		})
	}
}

func TestString(t *testing.T) {
	assert.True(t, strings.HasPrefix(String(), "orpheus "+Version+" "))
}
