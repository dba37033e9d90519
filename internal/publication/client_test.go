package publication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/linkmarket/pkg/clients"
)

func TestClient_Publish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, postsPath, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		var post Post
		require.NoError(t, json.NewDecoder(r.Body).Decode(&post))
		assert.Equal(t, "hello", post.Slug)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"post_id":42}`))
	}))
	defer srv.Close()

	c := NewClient(clients.NewHTTPClient())
	postID, err := c.Publish(context.Background(), srv.URL+"/", "secret", Post{Title: "Hello", Content: "x", Slug: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 42, postID)
}

func TestClient_PublishRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"error":"bad key"}`))
	}))
	defer srv.Close()

	c := NewClient(clients.NewHTTPClient())
	_, err := c.Publish(context.Background(), srv.URL, "wrong", Post{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"post_id":7}`))
	}))
	defer srv.Close()

	c := NewClient(clients.NewHTTPClient())
	c.retryInterval = time.Millisecond
	postID, err := c.Publish(context.Background(), srv.URL, "k", Post{})
	require.NoError(t, err)
	assert.Equal(t, 7, postID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Delete(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		expectErr bool
	}{
		{"Deleted", http.StatusOK, false},
		{"Already gone", http.StatusNotFound, false},
		{"Forbidden", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			httpClient := clients.NewMockHTTPClientI(ctrl)
			httpClient.EXPECT().
				Send(gomock.Any(), http.MethodDelete, "https://blog.example"+postsPath+"/9", gomock.Any(), gomock.Nil()).
				Return(tt.status, nil, nil)

			err := NewClient(httpClient).Delete(context.Background(), "https://blog.example", "k", 9)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
