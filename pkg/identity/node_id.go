package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Variant discriminates whether an id has been fully resolved against
// the project's module tree (Resolved) or was produced during parallel,
// pre-resolution processing (Synthetic).
type Variant uint8

const (
	VariantResolved Variant = iota
	VariantSynthetic
)

func (v Variant) String() string {
	if v == VariantResolved {
		return "R"
	}
	return "S"
}

// NodeID identifies a code element (function, struct, module, ...).
// Synthetic ids are produced before name resolution and are stable
// against reformatting but not guaranteed unique across aliasing or
// re-exports; Resolved ids are produced afterward and are canonical.
type NodeID struct {
	Variant Variant
	UUID    uuid.UUID
}

func (n NodeID) IsResolved() bool  { return n.Variant == VariantResolved }
func (n NodeID) IsSynthetic() bool { return n.Variant == VariantSynthetic }

func (n NodeID) String() string {
	return n.Variant.String() + ":" + shortForm(n.UUID)
}

// GenerateSyntheticNodeID derives a Synthetic NodeID from stable
// context available before module-tree resolution: the crate
// namespace, the file defining the item, its relative module path
// within that file, its name, its kind, and (optionally) its parent
// scope's NodeID. Span is deliberately excluded so the id survives
// reformatting. cfgBytes, when non-nil, disambiguates items guarded by
// mutually exclusive build configurations.
func GenerateSyntheticNodeID(
	crateNamespace uuid.UUID,
	filePath string,
	relativePath []string,
	itemName string,
	kind ItemKind,
	parentScope *NodeID,
	cfgBytes []byte,
) NodeID {
	var parentBytes [16]byte
	if parentScope != nil {
		parentBytes = parentScope.UUID
	}

	var data []byte
	data = append(data, crateNamespace[:]...)
	data = append(data, "::FILE::"...)
	data = append(data, filePath...)
	data = append(data, "::REL_PATH::"...)
	data = append(data, strings.Join(relativePath, "::")...)
	data = append(data, "::PARENT_ID::"...)
	data = append(data, parentBytes[:]...)
	data = append(data, "::KIND::"...)
	data = append(data, byte(kind))
	data = append(data, "::NAME::"...)
	data = append(data, itemName...)
	data = append(data, cfgBytes...)

	return NodeID{Variant: VariantSynthetic, UUID: newV5(data)}
}
