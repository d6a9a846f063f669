package identity

import "github.com/google/uuid"

// TypeID identifies a specific type structure (not its name) within a
// crate version. Synthetic ids are derived from structural components
// rather than the type's string form, so two usages that parse to the
// same structure (e.g. `Vec<String>` written two different ways never
// would, but aliasing of the same structure always does) collide
// intentionally.
type TypeID struct {
	Variant Variant
	UUID    uuid.UUID
}

func (t TypeID) IsResolved() bool  { return t.Variant == VariantResolved }
func (t TypeID) IsSynthetic() bool { return t.Variant == VariantSynthetic }

func (t TypeID) String() string {
	return t.Variant.String() + ":" + shortForm(t.UUID)
}

// GenerateSyntheticTypeID derives a Synthetic TypeID from the crate
// namespace, defining file, structural TypeKind, the TypeIDs of any
// nested types (generic arguments, element types, return types — in
// declaration order), and an optional enclosing scope.
//
// Note on Self and generic parameters: usages hashed by simple name
// (TypeKind{Tag: TypeKindNamed, Path: []string{"Self"}}) are not
// contextually disambiguated here; `Self` in `impl A` and `impl B` can
// collide until full name resolution assigns Resolved ids.
func GenerateSyntheticTypeID(
	crateNamespace uuid.UUID,
	filePath string,
	typeKind TypeKind,
	relatedTypeIDs []TypeID,
	parentScope *NodeID,
) TypeID {
	var data []byte
	data = append(data, crateNamespace[:]...)
	data = append(data, "::FILE::"...)
	data = append(data, filePath...)
	data = append(data, "::KIND::"...)
	data = append(data, typeKind.bytes()...)
	data = append(data, "::RELATED::"...)
	for _, r := range relatedTypeIDs {
		data = append(data, byte(r.Variant))
		data = append(data, r.UUID[:]...)
	}
	if parentScope != nil {
		data = append(data, "::PARENT::"...)
		data = append(data, parentScope.UUID[:]...)
	}

	return TypeID{Variant: VariantSynthetic, UUID: newV5(data)}
}
