package identity

// Properties is the authoritative identity state of the extension.
//
// The primary and secondary ECIDs are explicit fields so that two rules hold by
// construction: clearing the primary ECID clears the secondary, and a secondary ECID
// cannot exist without a primary one. The advertising identifier is stored apart from
// customer identifiers, which never contain a reserved namespace.
type Properties struct {
	ecid                ECID
	ecidSecondary       ECID
	adID                string
	customerIdentifiers *Map
}

// NewProperties returns empty properties.
func NewProperties() *Properties {
	return &Properties{customerIdentifiers: NewMap()}
}

// PropertiesFromMap builds properties from a parsed identity map. The first ECID item
// becomes the primary ECID and the second the secondary; further ECID items are
// dropped. The first GAID item becomes the advertising identifier. Other reserved
// namespaces are dropped and the rest become customer identifiers.
func PropertiesFromMap(m *Map) *Properties {
	p := NewProperties()

	ecids := m.Items(NamespaceECID)
	if len(ecids) > 0 {
		p.SetECID(ECID(ecids[0].ID))
	}
	if len(ecids) > 1 {
		p.SetECIDSecondary(ECID(ecids[1].ID))
	}

	if gaids := m.Items(NamespaceGAID); len(gaids) > 0 {
		p.SetAdID(gaids[0].ID)
	}

	for _, ns := range m.Namespaces() {
		if IsReservedNamespace(ns) {
			continue
		}
		for _, item := range m.Items(ns) {
			p.customerIdentifiers.AddItem(item, ns)
		}
	}
	return p
}

// ECID returns the primary ECID, empty when absent.
func (p *Properties) ECID() ECID {
	return p.ecid
}

// SetECID replaces the primary ECID and keeps any secondary ECID. Setting the empty
// ECID clears both the primary and the secondary ECID.
func (p *Properties) SetECID(ecid ECID) {
	if ecid.IsZero() {
		p.ecid = ""
		p.ecidSecondary = ""
		return
	}
	p.ecid = ecid
}

// ECIDSecondary returns the secondary ECID, empty when absent.
func (p *Properties) ECIDSecondary() ECID {
	return p.ecidSecondary
}

// SetECIDSecondary sets or, with the empty ECID, clears the secondary ECID.
// It does nothing while no primary ECID is set.
func (p *Properties) SetECIDSecondary(ecid ECID) {
	if p.ecid.IsZero() {
		return
	}
	p.ecidSecondary = ecid
}

// AdID returns the advertising identifier, empty when absent.
func (p *Properties) AdID() string {
	return p.adID
}

// SetAdID sets the advertising identifier. The empty string clears it.
func (p *Properties) SetAdID(adID string) {
	p.adID = adID
}

// CustomerIdentifiers returns a copy of the customer identifiers.
func (p *Properties) CustomerIdentifiers() *Map {
	return p.customerIdentifiers.Clone()
}

// UpdateCustomerIdentifiers adds the items of every non-reserved namespace of m to the
// customer identifiers with Map.AddItem semantics. Reserved namespaces and items with
// an empty id are ignored.
func (p *Properties) UpdateCustomerIdentifiers(m *Map) {
	for _, ns := range m.Namespaces() {
		if IsReservedNamespace(ns) {
			continue
		}
		for _, item := range m.Items(ns) {
			if item.ID == "" {
				continue
			}
			p.customerIdentifiers.AddItem(item, ns)
		}
	}
}

// RemoveCustomerIdentifiers removes the items of every non-reserved namespace of m from
// the customer identifiers with Map.RemoveItem semantics and reports whether anything
// was removed. Reserved namespaces are ignored.
func (p *Properties) RemoveCustomerIdentifiers(m *Map) bool {
	removed := false
	for _, ns := range m.Namespaces() {
		if IsReservedNamespace(ns) {
			continue
		}
		for _, item := range m.Items(ns) {
			if p.customerIdentifiers.RemoveItem(item, ns) {
				removed = true
			}
		}
	}
	return removed
}

// IdentityMap returns the externally visible identity map: the ECID namespace (primary
// then secondary), the GAID namespace, then the customer namespaces in their order.
// Synthesized items are ambiguous and not primary.
func (p *Properties) IdentityMap() *Map {
	out := NewMap()
	if !p.ecid.IsZero() {
		out.AddItem(NewItem(p.ecid.String(), Ambiguous, false), NamespaceECID)
		if !p.ecidSecondary.IsZero() {
			out.AddItem(NewItem(p.ecidSecondary.String(), Ambiguous, false), NamespaceECID)
		}
	}
	if p.adID != "" {
		out.AddItem(NewItem(p.adID, Ambiguous, false), NamespaceGAID)
	}
	out.Merge(p.customerIdentifiers)
	return out
}

// ToXDM returns the export view in XDM shape. With no identifiers at all the result is
// empty unless allowEmpty is set, in which case it is {"identityMap": {}}.
func (p *Properties) ToXDM(allowEmpty bool) map[string]any {
	return p.IdentityMap().ToXDM(allowEmpty)
}

