// Package registry implements the optional live-object registry: a
// process-wide record of every allocated value, dumped as object.dsv
// on request for debugging refcount leaks.
package registry

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"indentlang/internal/value"
)

// Registry tracks every currently-live value.Object, keyed by its id.
// It implements value.RegistryHook.
type Registry struct {
	live map[int64]*value.Object
}

// New returns a registry ready to be installed with value.SetRegistryHook.
func New() *Registry {
	return &Registry{live: make(map[int64]*value.Object)}
}

func (r *Registry) Track(o *value.Object)   { r.live[o.ID()] = o }
func (r *Registry) Untrack(o *value.Object) { delete(r.live, o.ID()) }

// Live returns the ids of every object still tracked, sorted. A
// program that exits clean leaves it empty.
func (r *Registry) Live() []int64 {
	ids := make([]int64, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dump writes object.dsv at path: header "object;refcount;type;value"
// followed by one row per still-live object.
func (r *Registry) Dump(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	defer w.Flush()

	if err := w.Write([]string{"object", "refcount", "type", "value"}); err != nil {
		return err
	}
	for _, id := range r.Live() {
		o := r.live[id]
		row := []string{
			strconv.FormatInt(id, 10),
			strconv.FormatInt(int64(o.RefCount()), 10),
			o.Tag().String(),
			value.Print(o),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
