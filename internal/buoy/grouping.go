// Package buoy clusters open-water divers into buoy groups and keeps the
// persisted groups for each (date, period) slot in step with reservations.
package buoy

import (
	"sort"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/domain"
)

const (
	MaxGroupSize   = 3
	MaxDepthSpread = 15

	ReasonNoBuoy = "no buoy available"
)

// Diver is one active open-water reservation with a depth.
type Diver struct {
	ReservationID int            `db:"reservation_id"`
	Subtype       domain.Subtype `db:"subtype"`
	Depth         int            `db:"depth_m"`
	PinnedBuoy    string         `db:"pinned_buoy"`
}

type PlannedGroup struct {
	BuoyName       string
	Subtype        *domain.Subtype
	MaxDepth       int
	ReservationIDs []int
	Pinned         bool
}

type Skipped struct {
	ReservationIDs []int  `json:"reservation_ids"`
	MaxDepth       int    `json:"max_depth"`
	Reason         string `json:"reason"`
}

type Plan struct {
	Groups  []PlannedGroup
	Skipped []Skipped
}

type cluster struct {
	subtype  domain.Subtype
	maxDepth int
	ids      []int
}

func (c *cluster) add(d Diver) {
	c.ids = append(c.ids, d.ReservationID)
	if d.Depth > c.maxDepth {
		c.maxDepth = d.Depth
	}
}

// accepts is the greedy join rule. A lone diver always takes a partner so
// nobody is stranded, even outside the depth window.
func (c *cluster) accepts(d Diver) bool {
	if d.Subtype != c.subtype || len(c.ids) >= MaxGroupSize {
		return false
	}
	return d.Depth-c.maxDepth <= MaxDepthSpread || len(c.ids) == 1
}

// Build partitions the divers of one slot and assigns buoys.
//
// Divers pinned to a buoy still on the roster keep it. Course coaching
// divers form one group each. Everyone else is sorted by subtype then depth
// and folded greedily. Each remaining group takes the shallowest buoy deep
// enough for its deepest diver, or is skipped when the roster has none. A
// buoy may carry several groups in one slot.
func Build(divers []Diver, roster []domain.Buoy) Plan {
	buoys := make([]domain.Buoy, len(roster))
	copy(buoys, roster)
	sort.SliceStable(buoys, func(i, j int) bool {
		if buoys[i].MaxDepth != buoys[j].MaxDepth {
			return buoys[i].MaxDepth < buoys[j].MaxDepth
		}
		return buoys[i].Name < buoys[j].Name
	})

	onRoster := make(map[string]bool, len(buoys))
	for _, b := range buoys {
		onRoster[b.Name] = true
	}

	var plan Plan

	pinned := make(map[string]*cluster)
	var pinnedNames []string
	var coaching, autonomous []Diver

	for _, d := range divers {
		switch {
		case d.PinnedBuoy != "" && onRoster[d.PinnedBuoy]:
			c, ok := pinned[d.PinnedBuoy]
			if !ok {
				c = &cluster{subtype: d.Subtype}
				pinned[d.PinnedBuoy] = c
				pinnedNames = append(pinnedNames, d.PinnedBuoy)
			}
			c.add(d)
		case d.Subtype == domain.SubtypeCourseCoaching:
			coaching = append(coaching, d)
		default:
			autonomous = append(autonomous, d)
		}
	}

	sort.Strings(pinnedNames)
	for _, name := range pinnedNames {
		c := pinned[name]
		plan.Groups = append(plan.Groups, PlannedGroup{
			BuoyName:       name,
			Subtype:        pinnedSubtype(c, divers, name),
			MaxDepth:       c.maxDepth,
			ReservationIDs: c.ids,
			Pinned:         true,
		})
	}

	sort.SliceStable(coaching, func(i, j int) bool {
		return coaching[i].ReservationID < coaching[j].ReservationID
	})
	var clusters []*cluster
	for _, d := range coaching {
		c := &cluster{subtype: d.Subtype}
		c.add(d)
		clusters = append(clusters, c)
	}

	sort.SliceStable(autonomous, func(i, j int) bool {
		a, b := autonomous[i], autonomous[j]
		if a.Subtype != b.Subtype {
			return a.Subtype < b.Subtype
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.ReservationID < b.ReservationID
	})
	var current *cluster
	for _, d := range autonomous {
		if current == nil || !current.accepts(d) {
			current = &cluster{subtype: d.Subtype}
			clusters = append(clusters, current)
		}
		current.add(d)
	}

	for _, c := range clusters {
		name, ok := pickBuoy(buoys, c.maxDepth)
		if !ok {
			plan.Skipped = append(plan.Skipped, Skipped{
				ReservationIDs: c.ids,
				MaxDepth:       c.maxDepth,
				Reason:         ReasonNoBuoy,
			})
			continue
		}
		subtype := c.subtype
		plan.Groups = append(plan.Groups, PlannedGroup{
			BuoyName:       name,
			Subtype:        &subtype,
			MaxDepth:       c.maxDepth,
			ReservationIDs: c.ids,
		})
	}

	return plan
}

func pickBuoy(sorted []domain.Buoy, depth int) (string, bool) {
	for _, b := range sorted {
		if b.MaxDepth >= depth {
			return b.Name, true
		}
	}
	return "", false
}

// pinnedSubtype is set only when every diver pinned to the buoy shares one.
func pinnedSubtype(c *cluster, divers []Diver, name string) *domain.Subtype {
	for _, d := range divers {
		if d.PinnedBuoy == name && d.Subtype != c.subtype {
			return nil
		}
	}
	subtype := c.subtype
	return &subtype
}
