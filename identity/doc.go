// Package identity holds the identity graph data model of the edge identity extension.
//
// The model has three layers:
//
//   - Item: a single identifier value with its authenticated state and primary flag.
//     Two items are equal when their ids are equal; state and primary flag are metadata.
//   - Map: an ordered multi-map from namespace to items. Namespaces keep first-seen order,
//     items keep insertion order, and adding an item whose id already exists in the
//     namespace replaces it in place.
//   - Properties: the authoritative state of the extension. It stores the device
//     identifier (ECID) and an optional secondary ECID as explicit fields, the advertising
//     identifier, and a Map of customer identifiers. Reserved namespaces (ECID, GAID, IDFA
//     in any letter case) are only reachable through the dedicated setters.
//
// # XDM shape
//
// Maps and properties are exchanged in the XDM identity map shape:
//
//	{
//	  "identityMap": {
//	    "ECID":  [{"id": "0123...", "authenticatedState": "ambiguous", "primary": false}],
//	    "Email": [{"id": "user@example.com", "authenticatedState": "authenticated", "primary": true}]
//	  }
//	}
//
// An empty map serializes to {} unless the caller allows empty output, in which case it
// serializes to {"identityMap": {}}. Parsing external data drops items whose id is
// missing, null or empty, while items built directly with NewItem may carry an empty id.
//
// # Concurrency
//
// Map and Properties are not safe for concurrent mutation. The owner of a Properties
// value must serialize all reads and writes; the edgeidentity.Extension does this with a
// single mutex.
package identity
