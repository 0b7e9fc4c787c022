package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgc202/apikit/httpx"
	"github.com/lgc202/apikit/request"
)

func TestCollector_RecordsCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, `{"code":"00000"}`)
		case "/biz":
			_, _ = io.WriteString(w, `{"code":"A0400","msg":"bad"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":"A0230"}`)
		}
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m := New(reg)
	c, err := request.New(
		request.WithBaseURL(srv.URL),
		request.WithHooks(nil, []httpx.AfterHook{m.AfterHook()}),
		request.WithObserver(m.Observer()),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Get(ctx, "/ok")
	require.NoError(t, err)
	_, err = c.Get(ctx, "/biz")
	require.Error(t, err)
	_, err = c.Get(ctx, "/expired")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(http.MethodGet, string(request.KindSuccess))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(http.MethodGet, string(request.KindBusiness))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(http.MethodGet, string(request.KindSessionExpired))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Observer()(http.MethodPost, request.KindTransport)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `apikit_responses_total{kind="transport",method="POST"} 1`)
}
