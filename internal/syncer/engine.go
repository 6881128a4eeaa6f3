// =============================================================================
// Invoice Sync - Sync Engine
// =============================================================================
//
// The engine pushes reconciled invoices to the ledger with check-then-create
// semantics:
//   1. Fetch the ledger index once per run.
//   2. Invoices whose key is in the index are Skipped.
//   3. Every other invoice gets exactly one create request.
//
// STATES:
//   Pending -> Skipped            key already in the ledger
//   Pending -> Creating -> Created  ledger answered 200
//   Pending -> Creating -> Failed   rejected, transport fault or timeout
//
// A failed invoice never stops the others. Nothing is retried; running the
// same table again after a failure is the recovery path, and the index check
// makes that safe for invoices that did get created.
//
// =============================================================================

package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/invoice-sync/internal/config"
	"github.com/ginjaninja78/invoice-sync/internal/ledger"
	"github.com/ginjaninja78/invoice-sync/internal/logging"
	"github.com/ginjaninja78/invoice-sync/internal/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// STATES AND OUTCOMES
// =============================================================================

// State is the sync state of one invoice.
type State int

const (
	Pending State = iota
	Skipped
	Creating
	Created
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Skipped:
		return "skipped"
	case Creating:
		return "creating"
	case Created:
		return "created"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the final state of one invoice in a run.
type Outcome struct {
	Invoice *types.InvoiceHeader
	State   State

	// Response is the ledger's reply to the create request.
	Response string

	// Err is set for Failed invoices.
	Err error
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Outcomes []Outcome

	// IndexSize is the number of invoices the ledger reported.
	IndexSize int

	// IndexFailed is set when the index query failed and the run went on
	// with an empty index.
	IndexFailed bool

	DryRun   bool
	Duration time.Duration
}

// Count returns the number of outcomes in state s.
func (s *Summary) Count(state State) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// HasFailures reports whether any invoice failed.
func (s *Summary) HasFailures() bool {
	return s.Count(Failed) > 0
}

// =============================================================================
// ENGINE
// =============================================================================

// Ledger is the remote side of a sync. *ledger.Client implements it.
type Ledger interface {
	FetchIndex(ctx context.Context) (*ledger.Index, error)
	CreateInvoice(ctx context.Context, h *types.InvoiceHeader) (string, error)
}

// Options control a run.
type Options struct {
	// IndexPolicy is config.PolicyFailOpen or config.PolicyFailClosed.
	IndexPolicy string

	// Workers is the number of concurrent create requests. Values below 2
	// mean sequential processing in input order.
	Workers int

	// Timeout bounds the whole run. Zero means no bound.
	Timeout time.Duration

	// DryRun fetches the index and plans the run but sends no creates.
	// Invoices that would be created stay Pending.
	DryRun bool
}

// Engine runs the check-then-create sync.
type Engine struct {
	ledger Ledger
	opts   Options
	logger logging.Logger
}

// New creates an Engine.
func New(l Ledger, opts Options, logger logging.Logger) *Engine {
	if opts.IndexPolicy == "" {
		opts.IndexPolicy = config.PolicyFailOpen
	}
	return &Engine{ledger: l, opts: opts, logger: logger}
}

// Run syncs invoices to the ledger.
//
// PARAMETERS:
//   - ctx: Cancelling it stops the run; invoices not yet attempted are
//     reported Failed with the context error.
//   - invoices: Reconciled headers with unique keys.
//
// RETURNS:
//   - A summary with one outcome per invoice, in input order.
//   - An error only when the index query fails under the fail-closed policy.
//     In that case no create was sent.
func (e *Engine) Run(ctx context.Context, invoices []*types.InvoiceHeader) (*Summary, error) {
	startTime := time.Now()

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	summary := &Summary{
		RunID:    uuid.New().String(),
		Outcomes: make([]Outcome, len(invoices)),
		DryRun:   e.opts.DryRun,
	}
	e.logger.Debug("Sync run %s: %d invoices", summary.RunID, len(invoices))

	// =========================================================================
	// STEP 1: FETCH INDEX
	// =========================================================================

	index, err := e.ledger.FetchIndex(ctx)
	if err != nil {
		if e.opts.IndexPolicy == config.PolicyFailClosed {
			return nil, fmt.Errorf("aborting before any create: %w", err)
		}
		e.logger.Warn("Could not read ledger index, treating it as empty: %v", err)
		e.logger.Warn("Invoices already in the ledger may be created twice")
		index = ledger.NewIndex()
		summary.IndexFailed = true
	} else if index.Len() == 0 {
		e.logger.Warn("Ledger index is empty; every invoice will be created")
	}
	summary.IndexSize = index.Len()

	// =========================================================================
	// STEP 2: PLAN
	// =========================================================================

	var pending []int
	for i, h := range invoices {
		summary.Outcomes[i] = Outcome{Invoice: h, State: Pending}
		if serial, ok := index.Serial(h.Key()); ok {
			summary.Outcomes[i].State = Skipped
			e.logger.Info("Invoice %s already in ledger (SerNr %s), skipping", h.Key(), serial)
			continue
		}
		pending = append(pending, i)
	}

	if e.opts.DryRun {
		for _, i := range pending {
			e.logger.Info("Would create invoice %s (%d lines, %s)",
				invoices[i].Key(), len(invoices[i].Details), invoices[i].PayableValue)
		}
		summary.Duration = time.Since(startTime)
		return summary, nil
	}

	// =========================================================================
	// STEP 3: CREATE
	// =========================================================================

	if e.opts.Workers > 1 {
		e.createConcurrently(ctx, summary.Outcomes, pending)
	} else {
		for _, i := range pending {
			e.create(ctx, &summary.Outcomes[i])
		}
	}

	summary.Duration = time.Since(startTime)
	e.logger.Debug("Sync run %s finished in %v", summary.RunID, summary.Duration)
	return summary, nil
}

// createConcurrently runs creates on a bounded pool. Each worker writes
// only its own outcome slot.
func (e *Engine) createConcurrently(ctx context.Context, outcomes []Outcome, pending []int) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for _, i := range pending {
		outcome := &outcomes[i]
		g.Go(func() error {
			e.create(gctx, outcome)
			return nil
		})
	}

	// Workers never return errors; failures stay in their outcomes.
	_ = g.Wait()
}

// create sends one invoice and records the result in o.
func (e *Engine) create(ctx context.Context, o *Outcome) {
	key := o.Invoice.Key()

	if err := ctx.Err(); err != nil {
		o.State = Failed
		o.Err = fmt.Errorf("not attempted: %w", err)
		e.logger.Error("Invoice %s not sent: %v", key, err)
		return
	}

	o.State = Creating
	if o.Invoice.Unbalanced {
		e.logger.Warn("Sending unbalanced invoice %s", key)
	}

	body, err := e.ledger.CreateInvoice(ctx, o.Invoice)
	o.Response = body
	if err != nil {
		o.State = Failed
		o.Err = err
		e.logger.Error("Failed to create invoice %s: %v", key, err)
		return
	}

	o.State = Created
	if response := ledger.Excerpt(body); response != "" {
		e.logger.Info("Created invoice %s: %s", key, response)
	} else {
		e.logger.Info("Created invoice %s", key)
	}
}
