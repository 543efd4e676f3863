package fixes

import (
	"log/slog"

	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
)

// Registry maps fix kinds to their operations. human_review is
// deliberately never registered: it is not executable, and Get reports
// "not found" for it, matching the decision engine's contract that a
// human_review strategy is applied as an audit entry, never run through a
// fix operation.
type Registry struct {
	ops    map[model.FixKind]Operation
	logger *slog.Logger
}

// NewRegistry returns an empty registry. If logger is nil, slog.Default()
// is used.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{ops: make(map[model.FixKind]Operation), logger: logger}
}

// Register adds an operation, keyed by its own Kind(). Re-registering a
// kind overwrites the previous operation and is logged.
func (r *Registry) Register(op Operation) {
	if _, exists := r.ops[op.Kind()]; exists {
		r.logger.Warn("overwriting fix operation", "kind", op.Kind())
	}
	r.ops[op.Kind()] = op
}

// Get looks up the operation for a fix kind.
func (r *Registry) Get(kind model.FixKind) (Operation, bool) {
	op, ok := r.ops[kind]
	return op, ok
}

// Kinds returns every registered fix kind.
func (r *Registry) Kinds() []model.FixKind {
	out := make([]model.FixKind, 0, len(r.ops))
	for k := range r.ops {
		out = append(out, k)
	}
	return out
}

// BuildDefaultRegistry returns a registry pre-loaded with all nine
// executable fix operations (every FixKind except human_review).
func BuildDefaultRegistry(logger *slog.Logger) *Registry {
	reg := NewRegistry(logger)
	reg.Register(MakeValidFix{})
	reg.Register(SimplifyFix{})
	reg.Register(DeleteFix{})
	reg.Register(TrimFix{})
	reg.Register(MergeFix{})
	reg.Register(SnapFix{})
	reg.Register(ClipFix{})
	reg.Register(NudgeFix{})
	reg.Register(FlagFix{})
	return reg
}

// FlagFix is a no-op fix that marks a feature for review: the geometry is
// returned unchanged, since flagging is a metadata-only signal (used for
// outside_boundary, where the feature itself isn't broken).
type FlagFix struct{}

func (FlagFix) Kind() model.FixKind { return model.FixFlag }

func (FlagFix) Execute(geometry orb.Geometry, params map[string]any) (orb.Geometry, error) {
	return geometry, nil
}

func (FlagFix) Validate(original, fixed orb.Geometry) bool { return true }
