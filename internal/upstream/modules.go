package upstream

import "github.com/meridian-travel/backoffice/internal/ledger"

// ModuleAdapter describes how one booking module is fetched: its endpoint
// path and the key the backend wraps the result array in. The key name is
// not uniform across modules, so each adapter records its own.
type ModuleAdapter struct {
	Kind     string
	Type     ledger.Type
	Path     string
	ArrayKey string
}

// Modules is the declarative adapter table driving the aggregator's fan-out.
// "vender" is the upstream's spelling, kept verbatim in paths and keys.
var Modules = []ModuleAdapter{
	{Kind: "ticket", Type: ledger.TypeTicket, Path: "/ticket", ArrayKey: "ticket"},
	{Kind: "umrah", Type: ledger.TypeUmrah, Path: "/umrah", ArrayKey: "umrahBookings"},
	{Kind: "visa-processing", Type: ledger.TypeVisaProcessing, Path: "/visa-processing", ArrayKey: "visa_processing"},
	{Kind: "gamca-token", Type: ledger.TypeGamcaToken, Path: "/gamca-token", ArrayKey: "gamcaTokens"},
	{Kind: "services", Type: ledger.TypeServices, Path: "/services", ArrayKey: "services"},
	{Kind: "navtcc", Type: ledger.TypeNavtcc, Path: "/navtcc", ArrayKey: "navtcc"},
	{Kind: "protector", Type: ledger.TypeProtector, Path: "/protector", ArrayKey: "protectors"},
	{Kind: "expenses", Type: ledger.TypeExpenses, Path: "/expenses", ArrayKey: "expenses"},
	{Kind: "refunded", Type: ledger.TypeRefunded, Path: "/refunded", ArrayKey: "refunded"},
	{Kind: "vender", Type: ledger.TypeVendor, Path: "/vender", ArrayKey: "vender"},
}

// AgentModule carries the agent ledger entries; it feeds the agent group-by
// and the reconciler's match search rather than the transaction list.
var AgentModule = ModuleAdapter{Kind: "agent", Path: "/agent", ArrayKey: "agents"}

// AdapterFor resolves a module adapter by kind.
func AdapterFor(kind string) (ModuleAdapter, bool) {
	if kind == AgentModule.Kind {
		return AgentModule, true
	}
	for _, m := range Modules {
		if m.Kind == kind {
			return m, true
		}
	}
	return ModuleAdapter{}, false
}
