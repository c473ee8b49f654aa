package dashboard

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/config"
	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func TestSessionLifecycle(t *testing.T) {
	srv := newWSTestServer(t)

	cfg := config.DefaultConfig().Dashboard
	cfg.ServerURL = srv.srv.URL

	sess, err := NewSession(cfg, clock.NewMock(), zap.NewNop())
	require.NoError(t, err)

	sess.Start()
	require.Eventually(t, sess.Connected, 2*time.Second, 10*time.Millisecond)

	srv.send(t, model.KindBlockMined, model.BlockMined{Block: blk(1)})
	require.Eventually(t, func() bool {
		return len(sess.Snapshot().Blocks) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sess.Close()
	assert.False(t, sess.Connected())

	// Close is the terminal state; a second Close must not panic.
	assert.NotPanics(t, sess.Close)
}

func TestSessionRejectsBadURL(t *testing.T) {
	cfg := config.DefaultConfig().Dashboard
	cfg.ServerURL = "ftp://bad"

	_, err := NewSession(cfg, clock.NewMock(), zap.NewNop())
	require.Error(t, err)
}
