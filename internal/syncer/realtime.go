package syncer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/store"
)

// Listener is the realtime push subscription on the canonical document
// row. It LISTENs on the document channel; on every notification it reads
// the current blob and hands it to Engine.ApplyPush, which replaces local
// state directly without re-migration or re-sweep.
//
// The listener lives for its owning session: cancel the context to tear it
// down, a new session constructs a new listener.
type Listener struct {
	dsn    string
	engine *Engine
}

func NewListener(dsn string, engine *Engine) *Listener {
	return &Listener{dsn: dsn, engine: engine}
}

// Start runs the subscription loop in the background. Connection loss is
// retried on a fixed delay; a failed cycle just waits for the next one,
// the poll loop covers any missed updates in between.
func (l *Listener) Start(ctx context.Context) {
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			if err := l.listen(ctx); err != nil && ctx.Err() == nil {
				zap.S().Warnf("realtime listener disconnected: %s", err.Error())
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
		}
	}()
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = conn.Close(cctx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+store.DocumentChannel); err != nil {
		return err
	}
	zap.S().Info("realtime listener subscribed")

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return err
		}
		// The notification payload is only a change marker; the full
		// document is read fresh so a burst of saves collapses into the
		// latest version.
		var data []byte
		row := conn.QueryRow(ctx, "SELECT data FROM hub_document WHERE id = $1", domain.DocumentRowID)
		if err := row.Scan(&data); err != nil {
			zap.S().Warnf("realtime read failed: %s", err.Error())
			continue
		}
		l.engine.ApplyPush(data)
	}
}
