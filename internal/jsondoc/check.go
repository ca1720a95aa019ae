package jsondoc

import (
	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/model"
)

// Difference codes produced by the value check. Added and removed are swap
// counterparts: comparing (new, old) yields removed wherever (old, new)
// yielded added.
const (
	CodeAdded   = "jsondoc.added"
	CodeRemoved = "jsondoc.removed"
	CodeChanged = "jsondoc.changed"
)

// ValueCheck reports added and removed nodes and changed scalar values.
type ValueCheck struct{}

// ExtensionID implements ext.Extension.
func (*ValueCheck) ExtensionID() string { return "jsondoc.values" }

// Configure implements ext.Extension.
func (*ValueCheck) Configure(*ext.Context) error { return nil }

// Close implements ext.Extension.
func (*ValueCheck) Close() error { return nil }

// Interest implements check.Check.
func (*ValueCheck) Interest() []model.Kind {
	return []model.Kind{KindDocument, KindObject, KindArray, KindField, KindItem, KindValue}
}

// DescendOnNonExisting implements check.Check: every node under an added or
// removed subtree is reported.
func (*ValueCheck) DescendOnNonExisting() bool { return true }

// Enter implements check.Check.
func (*ValueCheck) Enter(model.Pair) {}

// Leave implements check.Check.
func (*ValueCheck) Leave(p model.Pair) []diff.Difference {
	switch {
	case p.Old == nil:
		pl := payloadOf(p.New)
		return []diff.Difference{diff.NewDifference(CodeAdded).
			WithName("node added").
			WithDescription("The node was added.").
			AddClassification(diff.DimensionSemantic, diff.SeverityPotentiallyBreaking).
			AddAttachment("file", pl.File).
			AddAttachment("path", pl.Path).
			WithIdentifyingAttachments("path").
			Build()}
	case p.New == nil:
		pl := payloadOf(p.Old)
		return []diff.Difference{diff.NewDifference(CodeRemoved).
			WithName("node removed").
			WithDescription("The node was removed.").
			AddClassification(diff.DimensionSemantic, diff.SeverityBreaking).
			AddAttachment("file", pl.File).
			AddAttachment("path", pl.Path).
			WithIdentifyingAttachments("path").
			Build()}
	}

	oldPl, newPl := payloadOf(p.Old), payloadOf(p.New)
	if (oldPl.IsValue || newPl.IsValue) && oldPl.Value != newPl.Value {
		return []diff.Difference{diff.NewDifference(CodeChanged).
			WithName("value changed").
			WithDescription("The value changed from `"+oldPl.Value+"` to `"+newPl.Value+"`.").
			AddClassification(diff.DimensionSemantic, diff.SeverityPotentiallyBreaking).
			AddAttachment("oldValue", oldPl.Value).
			AddAttachment("newValue", newPl.Value).
			AddAttachment("file", newPl.File).
			AddAttachment("path", newPl.Path).
			WithIdentifyingAttachments("path").
			Build()}
	}
	return nil
}
