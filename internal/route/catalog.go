package route

import (
	"sort"
	"strings"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// Entry is one selectable course in the route selector.
type Entry struct {
	ID    core.RouteID
	Label string
	Sub   string
}

// Catalog lists the overview entry followed by every defined route, sorted by id.
func Catalog(defs Definitions, startLabel string) []Entry {
	ids := make([]core.RouteID, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]Entry, 0, len(ids)+1)
	entries = append(entries, Entry{ID: core.RouteAll, Label: "Todas as Boias", Sub: Describe(defs, core.RouteAll, startLabel)})
	for _, id := range ids {
		entries = append(entries, Entry{ID: id, Label: label(id), Sub: Describe(defs, id, startLabel)})
	}
	return entries
}

// label turns "numeral1" into "Numeral 1".
func label(id core.RouteID) string {
	s := string(id)
	i := strings.IndexAny(s, "0123456789")
	if i <= 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:i] + " " + s[i:]
}
