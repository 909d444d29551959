// Package version reports the orpheus version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Version is rewritten by scripts/update-version.go.
var Version = "0.1.0"

const (
	ProjectURL = "https://github.com/danfragoso/orpheus"
	CheckURL   = "https://raw.githubusercontent.com/danfragoso/orpheus/refs/heads/main/version.json"
)

type Info struct {
	Version string `json:"version"`
}

// String is the one line description printed by the version command.
func String() string {
	return fmt.Sprintf("orpheus %s (%s %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Check fetches the published version from url and reports whether it
// differs from the running one.
func Check(ctx context.Context, url string) (latest string, update bool, err error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil

	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", false, errors.Wrap(err, "build version request")
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return "", false, errors.Wrap(err, "fetch version")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, errors.Errorf("version check returned status: %d", resp.StatusCode)
	}
	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", false, errors.Wrap(err, "parse version JSON")
	}
	if info.Version == "" {
		return "", false, errors.New("version JSON has no version")
	}
	return info.Version, info.Version != Version, nil
}
