package identity

// ItemKind discriminates the kind of code element a NodeID identifies.
// It disambiguates items that would otherwise share a name and scope
// (a function and a struct both named Foo in the same module, for
// example) once span information is excluded from id generation.
type ItemKind uint8

const (
	ItemKindFunction ItemKind = iota
	ItemKindStruct
	ItemKindEnum
	ItemKindUnion
	ItemKindTypeAlias
	ItemKindTrait
	ItemKindImpl
	ItemKindModule
	ItemKindField
	ItemKindVariant
	ItemKindGenericParam
	ItemKindConst
	ItemKindStatic
	ItemKindMacro
	ItemKindImport
	ItemKindExternCrate
)

func (k ItemKind) String() string {
	switch k {
	case ItemKindFunction:
		return "Function"
	case ItemKindStruct:
		return "Struct"
	case ItemKindEnum:
		return "Enum"
	case ItemKindUnion:
		return "Union"
	case ItemKindTypeAlias:
		return "TypeAlias"
	case ItemKindTrait:
		return "Trait"
	case ItemKindImpl:
		return "Impl"
	case ItemKindModule:
		return "Module"
	case ItemKindField:
		return "Field"
	case ItemKindVariant:
		return "Variant"
	case ItemKindGenericParam:
		return "GenericParam"
	case ItemKindConst:
		return "Const"
	case ItemKindStatic:
		return "Static"
	case ItemKindMacro:
		return "Macro"
	case ItemKindImport:
		return "Import"
	case ItemKindExternCrate:
		return "ExternCrate"
	default:
		return "Unknown"
	}
}

// IsTypeLike reports whether this kind should resolve to the Type
// variant of CanonID/PubPathID rather than the Node variant.
func (k ItemKind) IsTypeLike() bool {
	return k == ItemKindTypeAlias
}
