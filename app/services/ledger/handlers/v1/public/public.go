// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashledger/ledger/business/web/errs"
	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/hashledger/ledger/foundation/blockchain/state"
	"github.com/hashledger/ledger/foundation/events"
	"github.com/hashledger/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app newTx
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	tx, err := database.NewTx(app.From, app.To, app.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "from", tx.FromID, "to", tx.ToID, "value", tx.Value)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = toAppTx(tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Tip returns the most recently admitted block.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()
	return web.Respond(ctx, w, toAppBlock(latest), http.StatusOK)
}

// BlocksByNumber returns blocks from the chain, all of them or the
// specified inclusive range.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()

	from := uint64(0)
	to := uint64(len(chain) - 1)

	if fromStr := web.Param(r, "from"); fromStr != "" {
		var err error
		from, err = strconv.ParseUint(fromStr, 10, 64)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid from block: %q", fromStr), http.StatusBadRequest)
		}
	}
	if toStr := web.Param(r, "to"); toStr != "" {
		var err error
		to, err = strconv.ParseUint(toStr, 10, 64)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid to block: %q", toStr), http.StatusBadRequest)
		}
	}

	if from > to || to >= uint64(len(chain)) {
		return errs.NewTrusted(fmt.Errorf("invalid block range [%d,%d]", from, to), http.StatusBadRequest)
	}

	blocks := make([]block, 0, to-from+1)
	for _, dbBlock := range chain[from : to+1] {
		blocks = append(blocks, toAppBlock(dbBlock))
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// ValidateChain re-verifies the whole chain from the genesis block forward
// and reports the first violation if one exists.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.ValidateChain(); err != nil {
		resp := validity{Valid: false}

		var chainErr *database.ChainError
		if errors.As(err, &chainErr) {
			resp.Block = chainErr.Number
			resp.Reason = chainErr.Err.Error()
		} else {
			resp.Reason = err.Error()
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	return web.Respond(ctx, w, validity{Valid: true}, http.StatusOK)
}
