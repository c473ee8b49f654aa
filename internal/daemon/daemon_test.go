package daemon

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/config"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.Bind = "127.0.0.1"
	cfg.API.Port = 0 // random port
	cfg.Platform.Miners = 1

	d := New(cfg, zap.NewNop())
	require.NoError(t, d.Start())

	// The API is reachable as soon as Start returns.
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", d.httpSrv.Port()))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 100*time.Millisecond)

	require.Greater(t, d.Uptime(), time.Duration(0))

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
