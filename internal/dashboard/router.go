package dashboard

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// Router classifies inbound envelopes by kind and applies them to the store.
// Malformed payloads are logged and dropped; nothing escapes to the caller.
type Router struct {
	store *Store
	log   *zap.Logger
}

// NewRouter creates a router writing into store.
func NewRouter(store *Store, log *zap.Logger) *Router {
	return &Router{store: store, log: log.Named("router")}
}

// HandleRaw parses one raw frame and dispatches it. A frame that is not a
// valid envelope mutates nothing.
func (r *Router) HandleRaw(raw []byte) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}
	if env.Kind == "" {
		r.log.Warn("dropping frame without kind")
		return
	}
	r.Handle(env)
}

// Handle dispatches one envelope. Unknown kinds are logged and ignored so
// newer servers can add message types without breaking older dashboards.
func (r *Router) Handle(env model.Envelope) {
	switch env.Kind {
	case model.KindInitialData:
		var data model.InitialData
		if !r.decode(env, &data) {
			return
		}
		r.store.ApplyInitial(data)
		r.log.Debug("applied initial data",
			zap.Int("operations", len(data.Operations)),
			zap.Int("blocks", len(data.Blocks)))

	case model.KindMetricsUpdate:
		var m model.NetworkMetrics
		if !r.decode(env, &m) {
			return
		}
		r.store.ReplaceMetrics(m)

	case model.KindMiningProgress:
		var op model.Operation
		if !r.decode(env, &op) {
			return
		}
		r.store.UpsertOperation(op)

	case model.KindBlockMined:
		var bm model.BlockMined
		if !r.decode(env, &bm) {
			return
		}
		r.store.AddBlock(bm.Block, bm.Discoveries)
		r.log.Debug("block mined",
			zap.Int64("index", bm.Block.Index),
			zap.Int("discoveries", len(bm.Discoveries)))

	case model.KindDiscoveryMade:
		var dm model.DiscoveryMade
		if !r.decode(env, &dm) {
			return
		}
		r.store.AddDiscovery(dm.Discovery)

	default:
		r.log.Info("ignoring unknown envelope kind", zap.String("kind", env.Kind))
	}
}

func (r *Router) decode(env model.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		r.log.Warn("dropping envelope with malformed payload",
			zap.String("kind", env.Kind), zap.Error(err))
		return false
	}
	return true
}
