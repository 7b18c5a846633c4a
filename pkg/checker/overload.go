package checker

import (
	"log/slog"

	"structcheck/pkg/types"
)

// --- Overload Resolver ---

// Resolver picks the signature of an overloaded callee that a call uses.
//
// Signatures are tried in declaration order and the first one that
// accepts the arguments wins, even when a later one would match more
// precisely.
type Resolver struct {
	table  *types.Table
	binder *Binder
	logger *slog.Logger
}

// NewResolver creates a resolver; generic signatures are instantiated with
// binder.
func NewResolver(table *types.Table, binder *Binder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{table: table, binder: binder, logger: logger}
}

// Resolve returns the first signature in sigs accepting args, instantiated
// if it is generic. A signature accepts the arguments when their count fits
// its parameters and every argument is assignable to its parameter. When
// none does, the error is a *NoMatchingOverloadError listing all of sigs.
func (r *Resolver) Resolve(sigs []*types.FunctionType, args Arguments, explicit []types.Type) (*types.FunctionType, error) {
	for i, sig := range sigs {
		if !sig.AcceptsArity(args.Len()) {
			continue
		}
		candidate := sig
		if sig.IsGeneric() || len(explicit) > 0 {
			inst, err := r.binder.Infer(sig, args, explicit)
			if err != nil {
				r.logger.Debug("overload skipped", "index", i, "signature", sig.String(), "error", err)
				continue
			}
			candidate = inst
		}
		if r.accepts(candidate, args) {
			r.logger.Debug("overload selected", "index", i, "of", len(sigs), "signature", candidate.String())
			return candidate, nil
		}
	}

	argTypes := make([]types.Type, args.Len())
	for i := range argTypes {
		argTypes[i] = args.Type(i, nil)
	}
	return nil, &NoMatchingOverloadError{Signatures: sigs, Args: argTypes}
}

func (r *Resolver) accepts(sig *types.FunctionType, args Arguments) bool {
	for i := 0; i < args.Len(); i++ {
		target, ok := parameterTarget(r.table, sig, i)
		if !ok {
			return false
		}
		if !r.table.IsAssignable(args.Type(i, target), target) {
			return false
		}
	}
	return true
}

// parameterTarget is what argument i of a call must be assignable to. An
// optional parameter also accepts undefined.
func parameterTarget(table *types.Table, sig *types.FunctionType, i int) (types.Type, bool) {
	pt, ok := sig.ParamAt(i)
	if !ok {
		return nil, false
	}
	if i < len(sig.Params) && sig.Params[i].Optional {
		pt = table.Union(pt, types.Undefined)
	}
	return pt, true
}
