package pathquery

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/expr"
	"github.com/jacoelho/treepath/internal/number"
	"github.com/jacoelho/treepath/internal/stack"
)

// match is one entry of the current result set. path is only populated
// when path tracking is enabled.
type match struct {
	value any
	path  []document.Key
}

// walker holds the state of a single evaluation. It is never shared
// between evaluations.
type walker struct {
	root       any
	cfg        config
	trackPaths bool
	produced   int
	sorter     *sorter
	bound      map[Expression]Expression
}

func newWalker(root any, cfg config) *walker {
	return &walker{
		root:       root,
		cfg:        cfg,
		trackPaths: cfg.resultType != ResultValue,
		sorter:     newSorter(cfg.collation),
	}
}

func (w *walker) run(steps []Step) ([]match, error) {
	current := []match{{value: w.root}}

	ctx := context.Background()
	debug := w.cfg.logger.Enabled(ctx, slog.LevelDebug)

	for i, step := range steps {
		next, err := w.apply(step, current)
		if err != nil {
			return nil, err
		}
		if debug {
			w.cfg.logger.LogAttrs(ctx, slog.LevelDebug, "step applied",
				slog.Int("step", i),
				slog.String("kind", step.Kind().String()),
				slog.String("text", step.String()),
				slog.Int("in", len(current)),
				slog.Int("out", len(next)),
			)
		}
		current = next
	}

	return current, nil
}

func (w *walker) apply(step Step, current []match) ([]match, error) {
	switch s := step.(type) {
	case MemberStep:
		return w.each(current, func(m match, out []match) ([]match, error) {
			return w.member(m, s.Key, out)
		})
	case WildcardStep:
		return w.each(current, w.children)
	case UnionStep:
		return w.each(current, func(m match, out []match) ([]match, error) {
			var err error
			for _, key := range s.Keys {
				if out, err = w.member(m, key, out); err != nil {
					return nil, err
				}
			}
			return out, nil
		})
	case SliceStep:
		return w.each(current, func(m match, out []match) ([]match, error) {
			return w.slice(m, s.Slice, out)
		})
	case DescentStep:
		return w.each(current, func(m match, out []match) ([]match, error) {
			return w.descend(m, s.Key, out)
		})
	case FilterStep:
		return w.filter(current, s.Predicate)
	case ScriptStep:
		return w.script(current, s.Script)
	case SortStep:
		keys := make([]SortKey, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = SortKey{Expr: w.prepare(k.Expr), Descending: k.Descending}
		}
		return w.sorter.sort(current, keys, w.root, w.cfg.logger), nil
	default:
		return nil, syntaxError(0, "unsupported step %T", step)
	}
}

// each applies fn to every current match in order, concatenating outputs.
func (w *walker) each(current []match, fn func(match, []match) ([]match, error)) ([]match, error) {
	out := make([]match, 0, len(current))
	var err error
	for _, m := range current {
		if out, err = fn(m, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// count records one produced match against the node limit.
func (w *walker) count() error {
	w.produced++
	if w.cfg.nodeLimit > 0 && w.produced > w.cfg.nodeLimit {
		return fmt.Errorf("%w: more than %d matches", ErrLimitExceeded, w.cfg.nodeLimit)
	}
	return nil
}

// emit appends the child of parent reached through key.
func (w *walker) emit(out []match, parent match, key document.Key, value any) ([]match, error) {
	if err := w.count(); err != nil {
		return nil, err
	}

	child := match{value: value}
	if w.trackPaths {
		// Clip so siblings never share the backing array of their parent.
		child.path = append(slices.Clip(parent.path), key)
	}
	return append(out, child), nil
}

func (w *walker) member(m match, key document.Key, out []match) ([]match, error) {
	value, canonical, ok := document.Child(m.value, key)
	if !ok {
		return out, nil
	}
	return w.emit(out, m, canonical, value)
}

func (w *walker) children(m match, out []match) ([]match, error) {
	var err error
	for key, value := range document.Children(m.value) {
		if out, err = w.emit(out, m, key, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (w *walker) slice(m match, s Slice, out []match) ([]match, error) {
	seq, ok := m.value.([]any)
	if !ok {
		return out, nil
	}

	var err error
	for _, i := range s.Indices(len(seq)) {
		if out, err = w.emit(out, m, document.Index(i), seq[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// descend walks the subtree of m in pre-order using an explicit stack. The
// match itself is visited first. Containers already on the path from m to
// the node being expanded are skipped, so cyclic trees terminate.
func (w *walker) descend(m match, key *document.Key, out []match) ([]match, error) {
	type frame struct {
		m     match
		depth int
	}

	var (
		pending   = stack.NewWithCapacity[frame](16)
		ancestors []any
		err       error
	)
	pending.Push(frame{m: m})

	for !pending.IsEmpty() {
		f, _ := pending.Pop()
		ancestors = ancestors[:f.depth]

		if key != nil {
			if out, err = w.member(f.m, *key, out); err != nil {
				return nil, err
			}
		} else {
			// Without a key every reached node is a match of its own.
			if err := w.count(); err != nil {
				return nil, err
			}
			out = append(out, f.m)
		}

		id, ok := document.Identity(f.m.value)
		if !ok {
			continue
		}
		ancestors = append(ancestors, id)

		var kids []frame
		for k, v := range document.Children(f.m.value) {
			if cid, ok := document.Identity(v); ok && slices.Contains(ancestors, cid) {
				continue
			}
			child := match{value: v}
			if w.trackPaths {
				child.path = append(slices.Clip(f.m.path), k)
			}
			kids = append(kids, frame{m: child, depth: f.depth + 1})
		}
		pending.PushReverse(kids...)
	}

	return out, nil
}

// prepare binds e to the root of this evaluation when e supports it.
func (w *walker) prepare(e Expression) Expression {
	binder, ok := e.(RootBinder)
	if !ok {
		return e
	}
	if b, ok := w.bound[e]; ok {
		return b
	}
	if w.bound == nil {
		w.bound = make(map[Expression]Expression)
	}
	b := binder.BindRoot(w.root)
	w.bound[e] = b
	return b
}

func (w *walker) filter(current []match, predicate Expression) ([]match, error) {
	predicate = w.prepare(predicate)
	keep := func(candidate match) bool {
		value, err := predicate.Evaluate(candidate.value, w.root)
		if err != nil {
			w.cfg.logger.Debug("filter candidate skipped",
				slog.String("expression", predicate.String()),
				slog.String("error", err.Error()),
			)
			return false
		}
		return truthy(value)
	}

	if w.cfg.evalType == EvalResult {
		out := make([]match, 0, len(current))
		for _, m := range current {
			if keep(m) {
				out = append(out, m)
			}
		}
		return out, nil
	}

	return w.each(current, func(m match, out []match) ([]match, error) {
		var err error
		for key, value := range document.Children(m.value) {
			if !keep(match{value: value}) {
				continue
			}
			if out, err = w.emit(out, m, key, value); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// script evaluates the expression once for the whole step and applies the
// resulting selector to every current match.
func (w *walker) script(current []match, script Expression) ([]match, error) {
	script = w.prepare(script)
	scope := w.root
	if w.cfg.evalType == EvalResult {
		values := make([]any, len(current))
		for i, m := range current {
			values[i] = m.value
		}
		scope = values
	}

	value, err := script.Evaluate(scope, w.root)
	if err != nil {
		w.cfg.logger.Debug("script selected nothing",
			slog.String("expression", script.String()),
			slog.String("error", err.Error()),
		)
		return []match{}, nil
	}

	selector, ok := scriptSelector(value)
	if !ok {
		w.cfg.logger.Debug("script value cannot address a child",
			slog.String("expression", script.String()),
			slog.Any("value", value),
		)
		return []match{}, nil
	}

	return w.apply(selector, current)
}

// scriptSelector turns a computed value into a member or slice step. An
// integral number is an index, a string shaped like start:end:step is a
// slice and any other string is a member name.
func scriptSelector(value any) (Step, bool) {
	if s, ok := value.(string); ok {
		if strings.Contains(s, ":") {
			if slice, err := parseSlice(s, 0); err == nil {
				return SliceStep{Slice: slice}, true
			}
		}
		return MemberStep{Key: document.Name(s)}, true
	}

	if expr.IsUndefined(value) || !number.IsNumber(value) {
		return nil, false
	}
	i, ok := number.ToInt(value)
	if !ok {
		return nil, false
	}
	return MemberStep{Key: document.Index(i)}, true
}
