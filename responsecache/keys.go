package responsecache

import (
	"github.com/goliatone/go-response-cache/store"
)

// Key identifies an entry in one of the response tables. The two
// implementations are SplitsKey and FirstRowsKey; the interface is sealed
// so the generic table only ever sees key shapes it has a table for.
//
// A key with zero-valued trailing fields acts as a key prefix for Delete
// and MarkStale: FirstRowsKey{Dataset: "d"} covers every entry under
// dataset "d". Upsert and Get require a complete key.
type Key interface {
	scope() store.Scope
	complete() bool
}

// SplitsKey identifies a splits response by dataset name.
type SplitsKey struct {
	Dataset string `json:"dataset"`
}

func (k SplitsKey) scope() store.Scope {
	return store.Scope{Dataset: k.Dataset}
}

func (k SplitsKey) complete() bool {
	return k.Dataset != ""
}

// FirstRowsKey identifies a first-rows response by dataset, config and
// split names.
type FirstRowsKey struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// scope builds the key-prefix scope. Prefixes are contiguous: when Config
// is empty, Split is ignored so the scope stays a proper prefix.
func (k FirstRowsKey) scope() store.Scope {
	sc := store.Scope{Dataset: k.Dataset, Config: k.Config}
	if k.Config != "" {
		sc.Split = k.Split
	}
	return sc
}

func (k FirstRowsKey) complete() bool {
	return k.Dataset != "" && k.Config != "" && k.Split != ""
}
