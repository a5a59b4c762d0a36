package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret")
}

func TestGetAnswer(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answers/7", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"answer_id": 7, "answer_text": "문제1 답"})
	})

	a, err := c.GetAnswer(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &Answer{ID: 7, Text: "문제1 답"}, a)
	assert.Equal(t, 1, c.Stats.Snapshot().Calls)
}

func TestGetAnswer_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetAnswer(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsRetryable(err))
}

func TestGetScores(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/results/1":
			w.Write([]byte(`{"score_details":[{"section_id":"1","title":"쟁점"},{"section_id":"1.1","is_leaf":true,"score":2,"max_points":3}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	records, err := c.GetScores(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1.1", records[1].SectionID)
	assert.Equal(t, 2.0, records[1].Score)

	records, err = c.GetScores(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSubmitAnswerText(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/answers/text", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4", r.PostForm.Get("exam_id"))
		assert.Equal(t, "9", r.PostForm.Get("student_id"))
		assert.Equal(t, "첫 답", r.PostForm.Get("problem1_text"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"answer_id":42}`))
	})

	id, err := c.SubmitAnswerText(context.Background(), 4, 9, map[string]string{"problem1_text": "첫 답"})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestServerErrorIsRetryable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.GetScores(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	var re *RetryableError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusServiceUnavailable, re.StatusCode)
	assert.Equal(t, 1, c.Stats.Snapshot().Failures)
}

func TestClientErrorIsNotRetryable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad exam", http.StatusBadRequest)
	})

	_, err := c.SubmitAnswerText(context.Background(), 1, 1, nil)
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "status 400")
}
