package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Data Scientist", Sanitize(`Data Scientist`))
	assert.Equal(t, "Data Scientist", Sanitize(`"Data Scientist"`))
	assert.Equal(t, "DROP TABLE", Sanitize(`'DROP TABLE';`))
	assert.Equal(t, "OReilly SQL", Sanitize(`O'Reilly SQL`))
}

func TestBuildQuery_RoleOnly(t *testing.T) {
	q := BuildQuery("DevOps Engineer", nil)
	assert.Equal(t, "Courses that help someone become a DevOps Engineer", q)
	assert.NotContains(t, q, "Focus on")
}

func TestBuildQuery_WithFocusSkills(t *testing.T) {
	q := BuildQuery("Data Scientist", []string{"MLOps", "Deep Learning", "Statistics", "Spark"})
	assert.Contains(t, q, "Focus on courses teaching MLOps, Deep Learning, Statistics")
	assert.NotContains(t, q, "Spark", "only the top three focus skills are named")
}

func TestBuildQuery_SanitizesEmbeddedValues(t *testing.T) {
	q := BuildQuery(`Engineer"; DROP`, []string{`'SQL'`})
	assert.NotContains(t, q, `"`)
	assert.NotContains(t, q, "'")
	assert.NotContains(t, q, ";")
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pool := NewPool(HTTPDialer(5*time.Second), config.PoolConfig{
		MaxConnections: 2,
		AcquireTimeout: time.Second,
		ConnectionTTL:  time.Minute,
	})
	t.Cleanup(pool.Close)

	client := NewClient(config.SearchConfig{
		Endpoint:     srv.URL,
		APIKey:       "test-token",
		DefaultLimit: 6,
	}, pool)
	return client, srv
}

func courseRows(rows ...courseRow) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Results: rows})
	}
}

func TestSearch_MapsRowsAndNormalizesTiers(t *testing.T) {
	client, _ := newTestClient(t, courseRows(
		courseRow{Title: "SQL for Beginners", URL: "https://c/1", Level: "Beginner", Platform: "Coursera"},
		courseRow{Title: "Intermediate Python", URL: "https://c/2", Level: "Intermediate"},
		courseRow{Title: "Everything Bootcamp", URL: "https://c/3", Level: "All Levels"},
		courseRow{Title: "Unlabeled", URL: "https://c/4", Level: "whatever"},
	))

	got, err := client.Search(context.Background(), "Data Analyst", nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, types.TierIntro, got[0].Tier)
	assert.Equal(t, types.TierIntermediate, got[1].Tier)
	assert.Equal(t, types.TierUnclassified, got[2].Tier)
	assert.Equal(t, types.TierAdvanced, got[3].Tier)
}

func TestSearch_RejectsRowsWithoutTitleOrURL(t *testing.T) {
	client, _ := newTestClient(t, courseRows(
		courseRow{Title: "", URL: "https://c/1", Level: "Beginner"},
		courseRow{Title: "No Link Course", URL: "", Level: "Beginner"},
		courseRow{Title: "Kept", URL: "https://c/2", Level: "Beginner"},
	))

	got, err := client.Search(context.Background(), "Data Analyst", nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Title)
}

func TestSearch_SendsQueryColumnsAndLimit(t *testing.T) {
	var captured searchRequest
	var auth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(searchResponse{})
	})

	_, err := client.Search(context.Background(), "SRE", []string{"Kubernetes"}, 8)
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", auth)
	assert.Equal(t, 8, captured.Limit)
	assert.Equal(t, searchColumns, captured.Columns)
	assert.Contains(t, captured.Query, "SRE")
	assert.Contains(t, captured.Query, "Kubernetes")
}

func TestSearch_DefaultLimitApplied(t *testing.T) {
	var captured searchRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(searchResponse{})
	})

	_, err := client.Search(context.Background(), "SRE", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, captured.Limit)
}

func TestSearch_ProviderErrorIsSearchUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "warehouse suspended", http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), "SRE", nil, 0)
	require.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestSearch_PoolSlotFreedAfterProviderError(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponse{})
	})

	_, err := client.Search(context.Background(), "SRE", nil, 0)
	require.ErrorIs(t, err, ErrSearchUnavailable)

	// The failed call discarded its session; the next one still succeeds.
	_, err = client.Search(context.Background(), "SRE", nil, 0)
	require.NoError(t, err)
}
