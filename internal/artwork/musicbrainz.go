package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type MusicBrainzConfig struct {
	APIURL      string
	CoverArtURL string // printf pattern taking the release ID
	UserAgent   string
	// Interval is the minimum spacing of requests; MusicBrainz asks for one per second.
	Interval time.Duration
	Timeout  time.Duration
	RetryMax int
}

func DefaultMusicBrainzConfig(version string) MusicBrainzConfig {
	return MusicBrainzConfig{
		APIURL:      "https://musicbrainz.org/ws/2/",
		CoverArtURL: "https://coverartarchive.org/release/%s/front",
		UserAgent:   "Orpheus/" + version + " (https://github.com/danfragoso/orpheus)",
		Interval:    time.Second,
		Timeout:     10 * time.Second,
		RetryMax:    3,
	}
}

// MusicBrainz looks releases up on MusicBrainz and downloads their front
// cover from the Cover Art Archive.
type MusicBrainz struct {
	cfg     MusicBrainzConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type (
	mbRelease struct {
		ID string `json:"id"`
	}
	mbReleaseSearch struct {
		Releases []mbRelease `json:"releases"`
	}
)

func NewMusicBrainz(cfg MusicBrainzConfig, logger *zap.Logger) *MusicBrainz {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = leveledLogger{logger.Sugar()}

	return &MusicBrainz{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		logger:  logger,
	}
}

// SearchReleases returns the IDs of up to 5 releases matching artist and album.
func (m *MusicBrainz) SearchReleases(ctx context.Context, artist, album string) ([]string, error) {
	query := fmt.Sprintf("artist:%s AND release:%s", sanitizeSearchTerm(artist), sanitizeSearchTerm(album))
	searchURL := fmt.Sprintf("%srelease/?query=%s&fmt=json&limit=5", m.cfg.APIURL, url.QueryEscape(query))

	resp, err := m.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("MusicBrainz API returned status: %d", resp.StatusCode)
	}

	var result mbReleaseSearch
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode MusicBrainz search result")
	}
	ids := make([]string, len(result.Releases))
	for i, r := range result.Releases {
		ids[i] = r.ID
	}
	return ids, nil
}

// CoverArt downloads the front cover of a release. A release without
// cover art gives nil data and no error.
func (m *MusicBrainz) CoverArt(ctx context.Context, releaseID string) ([]byte, string, error) {
	resp, err := m.get(ctx, fmt.Sprintf(m.cfg.CoverArtURL, releaseID))
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Errorf("Cover Art Archive returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "read cover art")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (m *MusicBrainz) get(ctx context.Context, u string) (*http.Response, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", u)
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", m.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", u)
	}
	return resp, nil
}

// sanitizeSearchTerm escapes quotes and quotes terms with spaces.
func sanitizeSearchTerm(term string) string {
	term = strings.TrimSpace(term)
	term = strings.ReplaceAll(term, `"`, `\"`)
	if strings.Contains(term, " ") {
		term = `"` + term + `"`
	}
	return term
}

// leveledLogger lets retryablehttp log through zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
