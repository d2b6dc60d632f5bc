package booking

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-travel/backoffice/internal/ledger"
	"github.com/meridian-travel/backoffice/internal/observability"
	"github.com/meridian-travel/backoffice/internal/upstream"
)

// Backend is the slice of the upstream client the aggregator needs.
type Backend interface {
	FetchModule(ctx context.Context, adapter upstream.ModuleAdapter) ([]map[string]any, error)
	BankLedger(ctx context.Context, bank string) ([]upstream.LedgerRow, error)
}

// Aggregator fans out one fetch per booking module, normalizes every
// collection into the common Transaction shape and derives the summary
// figures. A failed module degrades to an empty contribution so the
// dashboard renders partial data instead of failing outright.
type Aggregator struct {
	backend Backend
	banks   []string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAggregator wires the aggregator. banks lists the bank account names
// whose balances are snapshotted; metrics may be nil.
func NewAggregator(backend Backend, banks []string, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{backend: backend, banks: banks, logger: logger, metrics: metrics}
}

// vendorNameKeys and agentNameKeys are the grouping keys for party
// balances; "vender_name" is the upstream's spelling.
var (
	vendorNameKeys = []string{"vender_name", "vendor_name", "name"}
	agentNameKeys  = []string{"agent_name", "name"}
)

// Aggregate builds a fresh Snapshot. Each module fetch runs concurrently;
// errors are recorded per module and never abort the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context) (*Snapshot, error) {
	type moduleResult struct {
		adapter upstream.ModuleAdapter
		records []map[string]any
		err     error
	}

	results := make([]moduleResult, len(upstream.Modules))
	var agentRecords []map[string]any
	var agentErr error
	bankBalances := make([]BankBalance, len(a.banks))
	bankErrs := make([]error, len(a.banks))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range upstream.Modules {
		g.Go(func() error {
			records, err := a.backend.FetchModule(gctx, adapter)
			results[i] = moduleResult{adapter: adapter, records: records, err: err}
			return nil
		})
	}
	g.Go(func() error {
		agentRecords, agentErr = a.backend.FetchModule(gctx, upstream.AgentModule)
		return nil
	})
	for i, bank := range a.banks {
		g.Go(func() error {
			rows, err := a.backend.BankLedger(gctx, bank)
			if err != nil {
				bankErrs[i] = err
				return nil
			}
			balance := 0.0
			if len(rows) > 0 {
				balance = rows[len(rows)-1].Balance
			}
			bankBalances[i] = BankBalance{Bank: bank, Balance: balance}
			return nil
		})
	}
	_ = g.Wait()

	snapshot := &Snapshot{}
	var mu sync.Mutex
	degrade := func(module string, err error) {
		mu.Lock()
		snapshot.Degraded = append(snapshot.Degraded, module)
		mu.Unlock()
		a.logger.Warn("module fetch degraded to empty", slog.String("module", module), slog.Any("error", err))
		a.metrics.UpstreamFailure(module)
	}

	for _, res := range results {
		if res.err != nil {
			degrade(res.adapter.Kind, res.err)
			continue
		}
		for _, record := range res.records {
			snapshot.Transactions = append(snapshot.Transactions, NormalizeRecord(res.adapter.Type, record, a.logger))
		}
		if res.adapter.Type == ledger.TypeVendor {
			snapshot.Vendors = GroupParties(res.records, vendorNameKeys)
		}
	}

	if agentErr != nil {
		degrade(upstream.AgentModule.Kind, agentErr)
	} else {
		snapshot.Agents = GroupParties(agentRecords, agentNameKeys)
	}

	for i, bank := range a.banks {
		if bankErrs[i] != nil {
			degrade("accounts/"+bank, bankErrs[i])
			continue
		}
		snapshot.Banks = append(snapshot.Banks, bankBalances[i])
	}
	sort.Strings(snapshot.Degraded)

	summarize(snapshot)
	return snapshot, nil
}
