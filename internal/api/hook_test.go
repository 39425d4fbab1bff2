package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splash-p2p/go-splash/pkg/types"
)

type hookRecorder struct {
	mu     sync.Mutex
	bodies []map[string]string
	ctype  string
	status int
}

func (r *hookRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, _ := io.ReadAll(req.Body)
	var body map[string]string
	_ = json.Unmarshal(data, &body)

	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.ctype = req.Header.Get("Content-Type")
	status := r.status
	r.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
	}
}

func (r *hookRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func TestHook_PostsReceivedOffers(t *testing.T) {
	rec := &hookRecorder{}
	ts := httptest.NewServer(rec)
	defer ts.Close()

	h := NewHook(ts.URL, 5*time.Second)
	h.HandleEvent(types.OfferReceived{Offer: []byte("offer1abc")})
	h.HandleEvent(types.OfferBroadcasted{Offer: []byte("offer1def")})
	h.Close()

	require.Equal(t, 1, rec.count(), "只回调收到的 offer")
	assert.Equal(t, map[string]string{"offer": "offer1abc"}, rec.bodies[0])
	assert.Equal(t, "application/json", rec.ctype)
}

func TestHook_Post_Status(t *testing.T) {
	rec := &hookRecorder{status: http.StatusInternalServerError}
	ts := httptest.NewServer(rec)
	defer ts.Close()

	h := NewHook(ts.URL, 5*time.Second)
	defer h.Close()

	err := h.Post(context.Background(), "offer1abc")
	assert.ErrorIs(t, err, ErrHookStatus)
}

func TestHook_Post_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	h := NewHook(url, time.Second)
	defer h.Close()
	assert.Error(t, h.Post(context.Background(), "offer1abc"))
}

func TestHook_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	h := NewHook(ts.URL, 20*time.Millisecond)
	defer h.Close()
	assert.ErrorIs(t, h.Post(context.Background(), "offer1abc"), context.DeadlineExceeded)
}
