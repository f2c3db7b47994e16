package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("empty host is rejected", func(t *testing.T) {
		client, err := NewClient("   ")

		require.ErrorIs(t, err, ErrEmptyHost)
		assert.Nil(t, client)
	})

	t.Run("bare hostname is upgraded to https", func(t *testing.T) {
		client, err := NewClient("adb-123.azuredatabricks.net")

		require.NoError(t, err)
		assert.Equal(t, "https://adb-123.azuredatabricks.net", client.http.BaseURL)
	})

	t.Run("trailing slash is stripped", func(t *testing.T) {
		client, err := NewClient("https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com", client.http.BaseURL)
	})
}

func TestExecuteStatement(t *testing.T) {
	t.Run("succeeded statement returns rows", func(t *testing.T) {
		cell := func(s string) *string { return &s }

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/2.0/sql/statements", r.URL.Path)
			require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var req statementRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "wh-1", req.WarehouseID)
			assert.Equal(t, "30s", req.WaitTimeout)
			assert.Equal(t, "CANCEL", req.OnWaitTimeout)

			resp := StatementResponse{
				StatementID: "stmt-1",
				Status:      StatementStatus{State: StatementStateSucceeded},
				Result: &StatementResult{
					RowCount:  1,
					DataArray: [][]*string{{cell("123"), nil}},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, WithToken("secret"))
		require.NoError(t, err)

		result, err := client.ExecuteStatement(context.Background(), "wh-1", "SELECT 1")
		require.NoError(t, err)
		require.NotNil(t, result.Result)
		require.Len(t, result.Result.DataArray, 1)
		assert.Equal(t, "123", *result.Result.DataArray[0][0])
		assert.Nil(t, result.Result.DataArray[0][1])
	})

	t.Run("failed statement state is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			resp := StatementResponse{
				Status: StatementStatus{
					State: "FAILED",
					Error: &StatementError{ErrorCode: "SYNTAX_ERROR", Message: "bad SQL"},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client, err := NewClient(server.URL)
		require.NoError(t, err)

		result, err := client.ExecuteStatement(context.Background(), "wh-1", "SELEC 1")
		require.ErrorIs(t, err, ErrStatementFailed)
		assert.Contains(t, err.Error(), "bad SQL")
		assert.Nil(t, result)
	})

	t.Run("http error carries upstream message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error_code":"PERMISSION_DENIED","message":"no warehouse access"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL)
		require.NoError(t, err)

		_, err = client.ExecuteStatement(context.Background(), "wh-1", "SELECT 1")

		var apiErr *APIError

		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "PERMISSION_DENIED", apiErr.ErrorCode)
		assert.Contains(t, apiErr.Error(), "no warehouse access")
	})
}

func TestListJobs(t *testing.T) {
	t.Run("follows page tokens until limit", func(t *testing.T) {
		pages := map[string]jobsListResponse{
			"": {
				Jobs:          []Job{{JobID: 1}, {JobID: 2}},
				NextPageToken: "page-2",
			},
			"page-2": {
				Jobs: []Job{{JobID: 3}, {JobID: 4}},
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/2.2/jobs/list", r.URL.Path)

			page := pages[r.URL.Query().Get("page_token")]
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(page)
		}))
		defer server.Close()

		client, err := NewClient(server.URL)
		require.NoError(t, err)

		jobs, err := client.ListJobs(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, jobs, 3)
		assert.Equal(t, int64(3), jobs[2].JobID)
	})

	t.Run("stops when listing is exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(jobsListResponse{Jobs: []Job{{JobID: 7}}})
		}))
		defer server.Close()

		client, err := NewClient(server.URL)
		require.NoError(t, err)

		jobs, err := client.ListJobs(context.Background(), 100)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})
}

func TestListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/2.2/jobs/runs/list", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("job_id"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runsListResponse{
			Runs: []Run{{RunID: 10, JobID: 42, State: &RunState{LifeCycleState: "RUNNING"}}},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	runs, err := client.ListRuns(context.Background(), 42, 20)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(10), runs[0].RunID)
}

func TestListActiveRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "true", r.URL.Query().Get("active_only"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runsListResponse{
			Runs: []Run{
				{RunID: 1, State: &RunState{LifeCycleState: "RUNNING"}},
				{RunID: 2, State: &RunState{LifeCycleState: "PENDING"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	runs, err := client.ListActiveRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, 100, pageSize(500, 100))
	assert.Equal(t, 30, pageSize(30, 100))
	assert.Equal(t, 1, pageSize(0, 100))
}
