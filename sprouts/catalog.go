/*
catalog.go - Reason-name to reason-code resolution

PURPOSE:
  The ledger stores reason codes (numeric foreign keys); the engine speaks in
  reason names. The Catalog is the fixed mapping between the two, loaded once
  at startup and injected wherever resolution is needed.

WHY NOT A MODULE-LEVEL CACHE:
  A constructed-once Catalog instead of a package-global lookup cache: no
  hidden mutable state, and tests can inject a catalog with known codes.

FAILURE MODE:
  Resolve on a name the catalog does not contain returns UnknownReasonError.
  That means the calling code and the catalog have drifted apart; it is a
  deployment defect, not something to retry.
*/
package sprouts

// Catalog maps reason names to the codes the ledger stores. Immutable after
// construction.
type Catalog struct {
	codes map[ReasonName]ReasonCode
	names map[ReasonCode]ReasonName
}

// NewCatalog builds a catalog from an explicit name-to-code mapping, usually
// read from the sprout_reasons table at startup.
func NewCatalog(codes map[ReasonName]ReasonCode) *Catalog {
	c := &Catalog{
		codes: make(map[ReasonName]ReasonCode, len(codes)),
		names: make(map[ReasonCode]ReasonName, len(codes)),
	}
	for name, code := range codes {
		c.codes[name] = code
		c.names[code] = name
	}
	return c
}

// Resolve translates a reason name into its stored code.
func (c *Catalog) Resolve(name ReasonName) (ReasonCode, error) {
	code, ok := c.codes[name]
	if !ok {
		return 0, &UnknownReasonError{Reason: name}
	}
	return code, nil
}

// MustResolve is Resolve for reasons the engine itself emits; used at startup
// to fail fast when the catalog is missing a built-in reason.
func (c *Catalog) MustResolve(name ReasonName) ReasonCode {
	code, err := c.Resolve(name)
	if err != nil {
		panic(err)
	}
	return code
}

// Name translates a stored code back to its reason name. Unknown codes map to
// the empty name; the aggregate reader skips them.
func (c *Catalog) Name(code ReasonCode) (ReasonName, bool) {
	name, ok := c.names[code]
	return name, ok
}

// Validate checks that every reason the engine can emit resolves. Called once
// at startup so a drifted catalog surfaces immediately rather than on the
// first affected user action.
func (c *Catalog) Validate() error {
	for _, name := range AllReasons() {
		if _, err := c.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}
