package identity

// testItem describes one XDM entry for xdmOf. A nil id produces {"id": null}.
type testItem struct {
	namespace string
	id        any
}

func item(namespace, id string) testItem {
	return testItem{namespace: namespace, id: id}
}

func nullItem(namespace string) testItem {
	return testItem{namespace: namespace, id: nil}
}

// xdmOf builds an XDM identity map of ambiguous, non-primary entries, keeping the
// order of items within each namespace.
func xdmOf(items ...testItem) map[string]any {
	identityMap := map[string]any{}
	for _, it := range items {
		entry := map[string]any{
			KeyID:                 it.id,
			KeyAuthenticatedState: "ambiguous",
			KeyPrimary:            false,
		}
		list, _ := identityMap[it.namespace].([]any)
		identityMap[it.namespace] = append(list, entry)
	}
	return map[string]any{KeyIdentityMap: identityMap}
}

func propertiesFromXDM(data map[string]any) *Properties {
	return PropertiesFromMap(MapFromXDM(data))
}
