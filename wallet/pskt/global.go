package pskt

import (
	"strconv"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
)

// Version is the version of the document format
type Version uint8

// Version0 is the only document version
const Version0 Version = 0

func (v Version) String() string {
	return strconv.Itoa(int(v))
}

// Global holds the fields of a document that are not specific to one input
// or output.
type Global struct {
	Version          Version
	TxVersion        uint16
	FallbackLockTime *uint64

	InputsModifiable  bool
	OutputsModifiable bool

	// InputCount and OutputCount always equal the lengths of the input and
	// output vectors of the document.
	InputCount  int
	OutputCount int

	XPubs map[string]KeySource

	// ID is set together with the final signature scripts by a successful
	// finalize.
	ID *externalapi.DomainTransactionID

	Proprietaries map[string][]byte
}

// Clone returns a clone of Global
func (g *Global) Clone() *Global {
	clone := *g
	clone.FallbackLockTime = cloneUint64(g.FallbackLockTime)
	if g.ID != nil {
		clone.ID = g.ID.Clone()
	}
	if g.XPubs != nil {
		clone.XPubs = make(map[string]KeySource, len(g.XPubs))
		for xPub, keySource := range g.XPubs {
			clone.XPubs[xPub] = *keySource.Clone()
		}
	}
	clone.Proprietaries = cloneProprietaries(g.Proprietaries)
	return &clone
}

func (g *Global) combine(other *Global) (*Global, error) {
	conflict := func(field string) error {
		return &CombineError{Scope: ScopeGlobal, Index: -1, Field: field}
	}

	if g.Version != other.Version {
		return nil, conflict("Version")
	}
	if g.TxVersion != other.TxVersion {
		return nil, conflict("TxVersion")
	}
	if g.InputsModifiable != other.InputsModifiable {
		return nil, conflict("InputsModifiable")
	}
	if g.OutputsModifiable != other.OutputsModifiable {
		return nil, conflict("OutputsModifiable")
	}

	result := &Global{
		Version:           g.Version,
		TxVersion:         g.TxVersion,
		InputsModifiable:  g.InputsModifiable,
		OutputsModifiable: g.OutputsModifiable,
	}

	var ok bool
	result.FallbackLockTime, ok = combineOptional(g.FallbackLockTime, other.FallbackLockTime)
	if !ok {
		return nil, conflict("FallbackLockTime")
	}

	switch {
	case g.ID == nil && other.ID == nil:
	case g.ID == nil:
		result.ID = other.ID.Clone()
	case other.ID == nil || g.ID.Equal(other.ID):
		result.ID = g.ID.Clone()
	default:
		return nil, conflict("ID")
	}

	var conflictingXPub string
	result.XPubs, conflictingXPub, ok = combineMaps(g.XPubs, other.XPubs,
		func(a, b KeySource) bool { return a.Equal(&b) },
		func(keySource KeySource) KeySource { return *keySource.Clone() })
	if !ok {
		return nil, conflict("XPubs[" + conflictingXPub + "]")
	}

	var conflictingKey string
	result.Proprietaries, conflictingKey, ok = combineProprietaries(g.Proprietaries, other.Proprietaries)
	if !ok {
		return nil, conflict("Proprietaries[" + conflictingKey + "]")
	}

	return result, nil
}
