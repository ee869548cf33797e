package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// matchRank orders candidate overloads by how closely their parameters
// fit the supplied argument types, per spec.md §4.4's preference order:
// an exact match beats an implicit-widening match, which beats one that
// only works by boxing an argument into `any`.
type matchRank int

const (
	rankNone matchRank = iota
	rankAny
	rankPromotion
	rankExact
)

func rankParam(param, arg *types.DataType) matchRank {
	if types.Equal(param, arg) {
		return rankExact
	}
	if param.Kind == types.Float && arg.Kind == types.Integer {
		return rankPromotion
	}
	if param.Kind == types.Any {
		return rankAny
	}
	if arg.Kind == types.Null && (param.Kind == types.Object || param.Kind == types.FunctionPointer || param.Kind == types.String || param.Kind == types.Array) {
		return rankPromotion
	}
	return rankNone
}

// resolveOverload picks the best-matching candidate from group for the
// given argument types, reporting an ambiguity or no-match error through
// ctx. Returns nil on failure.
func resolveOverload(ctx *Context, group *ast.FuncGroup, args []*types.DataType, call ast.Expr) *ast.FuncDecl {
	var best *ast.FuncDecl
	bestRank := rankNone
	ambiguous := false
	for _, cand := range group.Overloads {
		if len(cand.Params) != len(args) {
			continue
		}
		rank := rankExact
		ok := true
		for i, p := range cand.Params {
			r := rankParam(p.Declared, args[i])
			if r == rankNone {
				ok = false
				break
			}
			if r < rank {
				rank = r
			}
		}
		if !ok {
			continue
		}
		switch {
		case best == nil || rank > bestRank:
			best, bestRank, ambiguous = cand, rank, false
		case rank == bestRank:
			ambiguous = true
		}
	}
	if ambiguous {
		ctx.error(call.Position(), "ambiguous call to "+group.Name+": multiple overloads match equally well")
		return nil
	}
	if best == nil {
		ctx.error(call.Position(), "no overload of "+group.Name+" matches the supplied argument types")
		return nil
	}
	return best
}
