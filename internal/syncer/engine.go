// Package syncer orchestrates the canonical document across the remote
// store, the presence table and the device-local cache. Fetch never fails:
// remote trouble degrades to the cached copy, then to hard-coded defaults.
package syncer

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/migrate"
	"github.com/talkincode/toughkiosk/internal/store"
	"github.com/talkincode/toughkiosk/internal/sweep"
	"github.com/talkincode/toughkiosk/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TopicDocumentChanged is published on the in-process bus whenever a new
// document version lands, either via an own save or a remote push.
const TopicDocumentChanged = "document:changed"

// Engine is the device/hub synchronization engine. All collaborators are
// injected; Engine owns no global state.
type Engine struct {
	docs     store.DocumentStore
	presence store.PresenceStore
	cache    *store.Cache
	pool     *ants.Pool
	bus      EventBus.Bus
}

func NewEngine(docs store.DocumentStore, presence store.PresenceStore,
	cache *store.Cache, pool *ants.Pool, bus EventBus.Bus) *Engine {
	return &Engine{docs: docs, presence: presence, cache: cache, pool: pool, bus: bus}
}

// Bus exposes the change bus for consumers that render the document.
func (e *Engine) Bus() EventBus.Bus {
	return e.bus
}

// Fetch returns a usable document, always. Remote document and presence
// rows are read concurrently; the blob is normalized, the fleet field is
// replaced wholesale by the presence rows, expired catalogues are swept,
// and the result is cached best-effort.
func (e *Engine) Fetch(ctx context.Context) *domain.Document {
	started := time.Now()

	var raw map[string]interface{}
	var kiosks []domain.KioskRegistry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := e.docs.LoadRaw(gctx)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	g.Go(func() error {
		// Presence failure is not fatal to a fetch; the fleet view just
		// comes up empty until the next poll.
		rows, err := e.presence.ListKiosks(gctx)
		if err != nil {
			zap.S().Warnf("presence read failed: %s", err.Error())
			return nil
		}
		kiosks = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.S().Warnf("remote fetch failed, using local fallback: %s", err.Error())
		return e.fallback()
	}

	doc := migrate.Normalize(raw)

	// Total overlay: the presence table is the single source of truth for
	// fleet state, whatever the blob contained is stale by definition.
	doc.Fleet = mapFleet(kiosks)

	doc, res := sweep.Sweep(doc, time.Now())
	if res.Changed() {
		metrics.SetGauge("sync_sweep_archived", int64(len(res.Expired)))
		e.submitCleanupSave(doc)
	}

	e.cacheDocument(doc)
	metrics.SetGauge("sync_fetch_ms", time.Since(started).Milliseconds())
	return doc
}

// Save writes the document: local cache first, then the remote upsert. The
// transient fleet field never travels through this path. A remote failure
// is returned to the caller so the editor can warn that changes are
// local-only; the cache write is never rolled back.
func (e *Engine) Save(ctx context.Context, doc *domain.Document) error {
	stripped := *doc
	stripped.Fleet = nil

	e.cacheDocument(&stripped)

	if err := e.docs.SaveDocument(ctx, &stripped); err != nil {
		return errors.Wrap(err, "remote save")
	}
	if e.bus != nil {
		e.bus.Publish(TopicDocumentChanged, &stripped)
	}
	return nil
}

// ApplyPush installs a pushed document payload directly: cache and bus
// only, no re-migration and no re-sweep. The pushing side is trusted to
// have produced a valid document.
func (e *Engine) ApplyPush(data []byte) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		zap.S().Warnf("discarding malformed document push: %s", err.Error())
		return
	}
	if e.cache != nil {
		if err := e.cache.PutDocument(data); err != nil {
			zap.S().Debugf("cache write failed: %s", err.Error())
		}
	}
	if e.bus != nil {
		e.bus.Publish(TopicDocumentChanged, &doc)
	}
}

// fallback serves the cached copy through the migration engine, or the
// hard-coded default document when no cache exists.
func (e *Engine) fallback() *domain.Document {
	if e.cache != nil {
		if data, ok := e.cache.GetDocument(); ok {
			return migrate.NormalizeJSON(data)
		}
	}
	return migrate.Normalize(nil)
}

// submitCleanupSave persists a swept document in the background so other
// devices do not redo the same cleanup. The caller keeps mutating the
// document Fetch returned, so the snapshot is serialized here, before
// detaching; the task only ever sees its own copy. Fire and forget:
// failures are logged and swallowed, the caller's fetch result is
// unaffected.
func (e *Engine) submitCleanupSave(doc *domain.Document) {
	stripped := *doc
	stripped.Fleet = nil

	data, err := json.Marshal(&stripped)
	if err != nil {
		zap.S().Warnf("sweep cleanup not encoded: %s", err.Error())
		return
	}

	task := func() {
		var snapshot domain.Document
		if err := json.Unmarshal(data, &snapshot); err != nil {
			zap.S().Warnf("sweep cleanup snapshot corrupt: %s", err.Error())
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.docs.SaveDocument(ctx, &snapshot); err != nil {
			zap.S().Warnf("sweep cleanup save failed: %s", err.Error())
		}
	}
	if e.pool != nil {
		if err := e.pool.Submit(task); err != nil {
			zap.S().Warnf("sweep cleanup not scheduled: %s", err.Error())
		}
		return
	}
	go task()
}

func (e *Engine) cacheDocument(doc *domain.Document) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		zap.S().Debugf("cache encode failed: %s", err.Error())
		return
	}
	// Quota or IO trouble here must never surface to the caller.
	if err := e.cache.PutDocument(data); err != nil {
		zap.S().Debugf("cache write failed: %s", err.Error())
	}
}

func mapFleet(kiosks []domain.KioskRegistry) []domain.FleetEntry {
	fleet := make([]domain.FleetEntry, 0, len(kiosks))
	for i := range kiosks {
		fleet = append(fleet, kiosks[i].ToFleetEntry())
	}
	return fleet
}
