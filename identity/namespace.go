package identity

import "strings"

// Namespaces managed by the extension itself.
const (
	// NamespaceECID holds the Experience Cloud ID, primary first and secondary second.
	NamespaceECID = "ECID"

	// NamespaceGAID holds the Google advertising identifier.
	NamespaceGAID = "GAID"

	// NamespaceIDFA holds the Apple advertising identifier. It is reserved even though
	// this extension never populates it.
	NamespaceIDFA = "IDFA"
)

// reservedNamespaces is keyed by lower-cased namespace.
var reservedNamespaces = map[string]struct{}{
	"ecid": {},
	"gaid": {},
	"idfa": {},
}

// IsReservedNamespace reports whether namespace matches a reserved namespace, ignoring case.
func IsReservedNamespace(namespace string) bool {
	_, ok := reservedNamespaces[strings.ToLower(namespace)]
	return ok
}
