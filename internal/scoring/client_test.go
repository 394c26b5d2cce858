package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/shared/telemetry"
)

const scenarioBody = `{"matchScore":0.82,"resumeSkills":["Python"],"jobSkills":["Python","Leadership"],"missingSkills":["Leadership"],"suggestions":["Add leadership examples"]}`

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(Config{BaseURL: url, Timeout: timeout, RetryBackoff: time.Millisecond})
	require.NoError(t, err)
	return client
}

func TestScoreSendsContractAndParsesResult(t *testing.T) {
	var gotReq map[string]string
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scenarioBody))
	}))
	defer srv.Close()

	ctx := telemetry.WithRequestID(context.Background(), "req-42")
	got, err := newTestClient(t, srv.URL+"/", time.Second).Score(ctx, "Python Developer", "Senior Python Engineer")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"resume_text": "Python Developer", "job_description": "Senior Python Engineer"}, gotReq)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, Result{
		MatchScore:    0.82,
		ResumeSkills:  []string{"Python"},
		JobSkills:     []string{"Python", "Leadership"},
		MissingSkills: []string{"Leadership"},
		Suggestions:   []string{"Add leadership examples"},
	}, got)
}

func TestScoreNormalizesMissingLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"matchScore":71,"jobSkills":null}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL, time.Second).Score(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 71.0, got.MatchScore)
	assert.NotNil(t, got.ResumeSkills)
	assert.NotNil(t, got.JobSkills)
	assert.NotNil(t, got.MissingSkills)
	assert.NotNil(t, got.Suggestions)
	assert.Empty(t, got.Suggestions)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := Normalize(Result{MatchScore: 0.5, ResumeSkills: []string{"Go"}})
	twice := Normalize(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Go"}, twice.ResumeSkills)
	assert.Equal(t, []string{}, twice.MissingSkills)
}

func TestScoreRetriesOnceAfterServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(scenarioBody))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL, time.Second).Score(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0.82, got.MatchScore)
}

func TestScoreGivesUpAfterSecondServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, strings.Repeat("x", 4096), http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Score(context.Background(), "a", "b")
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, http.StatusBadGateway, engineErr.StatusCode)
	assert.LessOrEqual(t, len(engineErr.Body), 2048)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScoreDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Both resume_text and job_description are required"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Score(context.Background(), "", "")
	require.ErrorIs(t, err, ErrEngine)
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, http.StatusBadRequest, engineErr.StatusCode)
	assert.Contains(t, engineErr.Body, "required")
	assert.Equal(t, int32(1), calls.Load())
}

func TestScoreMalformedResponseIsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing matchScore", body: `{"resumeSkills":["Go"]}`},
		{name: "non numeric matchScore", body: `{"matchScore":"high"}`},
		{name: "wrong list type", body: `{"matchScore":1,"suggestions":"more"}`},
		{name: "not json", body: `<html>ok</html>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, time.Second).Score(context.Background(), "a", "b")
			require.ErrorIs(t, err, ErrMalformedResponse)
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.NotEmpty(t, malformed.Reason)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestScoreTimeoutIsRetriedThenSurfaced(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 30*time.Millisecond).Score(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScoreUnreachableEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, time.Second).Score(context.Background(), "a", "b")
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, 0, engineErr.StatusCode)
	assert.Error(t, engineErr.Err)
}

func TestScoreCallerCancellationDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, RetryBackoff: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Score(ctx, "a", "b")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	require.NoError(t, client.Health(context.Background()))

	healthy.Store(false)
	err := client.Health(context.Background())
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, http.StatusServiceUnavailable, engineErr.StatusCode)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "})
	require.Error(t, err)

	client, err := NewClient(Config{BaseURL: "http://engine:5000"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.Equal(t, DefaultRetryBackoff, client.backoff)
}
