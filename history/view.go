package history

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// RevealStep is both the initial number of visible records and the number
// ShowMore adds.
const RevealStep = 5

// Direction filters records relative to the owner address.
type Direction int

const (
	All Direction = iota
	Incoming
	Outgoing
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return "all"
	}
}

// ParseDirection parses all, incoming or outgoing.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "incoming", "in":
		return Incoming, nil
	case "outgoing", "out":
		return Outgoing, nil
	}
	return All, fmt.Errorf("unknown filter %q, use all, incoming or outgoing", s)
}

// View is a read-only window over a fetched record list. The direction
// filter is applied first, then the search, then the reveal count. The
// underlying list is never modified.
type View struct {
	records   []Record
	owner     string
	direction Direction
	search    string
	reveal    int
}

// NewView creates a view over records owned by owner.
func NewView(records []Record, owner common.Address) *View {
	return &View{
		records: records,
		owner:   strings.ToLower(owner.Hex()),
		reveal:  RevealStep,
	}
}

// SetDirection changes the direction filter. The reveal count is kept.
func (v *View) SetDirection(d Direction) { v.direction = d }

// Direction returns the direction filter.
func (v *View) Direction() Direction { return v.direction }

// Search returns the normalized search text.
func (v *View) Search() string { return v.search }

// SetSearch sets the case-insensitive substring matched against the
// recipient address and the hash.
func (v *View) SetSearch(s string) { v.search = strings.ToLower(strings.TrimSpace(s)) }

// SetReveal sets how many records are visible. Values below one are clamped to one.
func (v *View) SetReveal(n int) {
	if n < 1 {
		n = 1
	}
	v.reveal = n
}

// ShowMore reveals RevealStep more records.
func (v *View) ShowMore() { v.reveal += RevealStep }

// Reveal returns the current reveal count.
func (v *View) Reveal() int { return v.reveal }

// All returns the unfiltered list.
func (v *View) All() []Record { return v.records }

// Filtered returns the records passing the direction filter and the search.
func (v *View) Filtered() []Record {
	out := make([]Record, 0, len(v.records))
	for _, r := range v.records {
		if !v.matchesDirection(r) {
			continue
		}
		if v.search != "" &&
			!strings.Contains(strings.ToLower(r.To), v.search) &&
			!strings.Contains(strings.ToLower(r.Hash), v.search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Visible returns at most Reveal() records of Filtered().
func (v *View) Visible() []Record {
	filtered := v.Filtered()
	if len(filtered) > v.reveal {
		return filtered[:v.reveal]
	}
	return filtered
}

// HasMore reports whether ShowMore would reveal anything.
func (v *View) HasMore() bool {
	return v.reveal < len(v.Filtered())
}

func (v *View) matchesDirection(r Record) bool {
	switch v.direction {
	case Incoming:
		return strings.ToLower(r.To) == v.owner
	case Outgoing:
		return strings.ToLower(r.From) == v.owner
	default:
		return true
	}
}
