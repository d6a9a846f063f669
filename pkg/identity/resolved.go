package identity

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PathKind discriminates the Node/Type variants shared by CanonID and
// PubPathID.
type PathKind uint8

const (
	PathKindNode PathKind = iota
	PathKindType
)

func (k PathKind) String() string {
	if k == PathKindType {
		return "T"
	}
	return "N"
}

// IDInfo carries the inputs needed to generate a resolved, path-based
// id: the file defining the item, the logical path to use (canonical
// for CanonID, shortest-public for PubPathID), any cfg gates guarding
// it, and its ItemKind.
type IDInfo struct {
	FilePath        string
	LogicalItemPath []string
	Cfgs            []string
	ItemKind        ItemKind
}

// CanonID identifies an item by its canonical path within the defining
// crate (e.g. `crate::module_a::Item`). Always Resolved — there is no
// Synthetic CanonID.
type CanonID struct {
	Kind PathKind
	UUID uuid.UUID
}

func (c CanonID) String() string { return "P:C:" + c.Kind.String() + ":" + shortForm(c.UUID) }

// GenerateResolvedCanonID derives a CanonID from the item's canonicalized
// (symlink-resolved, absolute) defining file path plus its canonical
// logical path and cfg gates. Canonicalization failures (the file does
// not exist, a component is not a directory, ...) surface as
// *PathResolutionError.
func GenerateResolvedCanonID(crateNamespace uuid.UUID, info IDInfo) (CanonID, error) {
	abs, err := filepath.Abs(info.FilePath)
	if err != nil {
		return CanonID{}, &PathResolutionError{Path: info.FilePath, Cause: err}
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return CanonID{}, &PathResolutionError{Path: info.FilePath, Cause: err}
	}

	var data []byte
	data = append(data, crateNamespace[:]...)
	data = append(data, "::CANON_FILE::"...)
	data = append(data, canonical...)
	data = append(data, "::CANON_PATH::"...)
	data = append(data, strings.Join(info.LogicalItemPath, "::")...)
	data = append(data, "::CANON_CFG::"...)
	data = append(data, strings.Join(info.Cfgs, "::")...)

	id := newV5(data)
	if info.ItemKind.IsTypeLike() {
		return CanonID{Kind: PathKindType, UUID: id}, nil
	}
	return CanonID{Kind: PathKindNode, UUID: id}, nil
}

// PubPathID identifies an item by the shortest path through which it
// is publicly reachable (considering re-exports). Unlike CanonID it
// does not canonicalize the file path, since re-exports are resolved
// independently of the filesystem.
type PubPathID struct {
	Kind PathKind
	UUID uuid.UUID
}

func (p PubPathID) String() string { return "P:S:" + p.Kind.String() + ":" + shortForm(p.UUID) }

// GenerateResolvedPubPathID derives a PubPathID from the item's
// original (non-canonicalized) defining file path, its shortest public
// path, and cfg gates.
func GenerateResolvedPubPathID(crateNamespace uuid.UUID, info IDInfo) (PubPathID, error) {
	var data []byte
	data = append(data, crateNamespace[:]...)
	data = append(data, "::ORIG_FILE::"...)
	data = append(data, info.FilePath...)
	data = append(data, "::SPP_PATH::"...)
	data = append(data, strings.Join(info.LogicalItemPath, "::")...)
	data = append(data, strings.Join(info.Cfgs, "::")...)

	id := newV5(data)
	if info.ItemKind.IsTypeLike() {
		return PubPathID{Kind: PathKindType, UUID: id}, nil
	}
	return PubPathID{Kind: PathKindNode, UUID: id}, nil
}

// CanonIDFromNodeID converts a Resolved NodeID directly into a Node
// CanonID, reusing its UUID rather than rehashing. Synthetic inputs
// cannot be converted this way: their identity has not yet been
// established against a canonical path.
func CanonIDFromNodeID(n NodeID) (CanonID, error) {
	if n.IsSynthetic() {
		return CanonID{}, &SyntheticConversionError{Kind: "NodeID", Value: n.String()}
	}
	return CanonID{Kind: PathKindNode, UUID: n.UUID}, nil
}

// CanonIDFromTypeID converts a Resolved TypeID into a Type CanonID.
func CanonIDFromTypeID(t TypeID) (CanonID, error) {
	if t.IsSynthetic() {
		return CanonID{}, &SyntheticConversionError{Kind: "TypeID", Value: t.String()}
	}
	return CanonID{Kind: PathKindType, UUID: t.UUID}, nil
}

// PubPathIDFromNodeID converts a Resolved NodeID into a Node PubPathID.
func PubPathIDFromNodeID(n NodeID) (PubPathID, error) {
	if n.IsSynthetic() {
		return PubPathID{}, &SyntheticConversionError{Kind: "NodeID", Value: n.String()}
	}
	return PubPathID{Kind: PathKindNode, UUID: n.UUID}, nil
}

// PubPathIDFromTypeID converts a Resolved TypeID into a Type PubPathID.
func PubPathIDFromTypeID(t TypeID) (PubPathID, error) {
	if t.IsSynthetic() {
		return PubPathID{}, &SyntheticConversionError{Kind: "TypeID", Value: t.String()}
	}
	return PubPathID{Kind: PathKindType, UUID: t.UUID}, nil
}
