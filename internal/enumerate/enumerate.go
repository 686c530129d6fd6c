// Package enumerate produces the ordered parameter space of query helpers.
//
// The sequence is a first-class value independent of rendering, so it can be
// tested for completeness and uniqueness without touching any template.
//
// Order (fixed, outermost first):
//
//	tags 0..MaxTags → shared 0..MaxShared (skipping 0,0) → whereable 0..tags → threshold 0..shared
package enumerate

import "github.com/roach88/querygen/internal/ir"

// Cases returns every valid GenerationCase under b in enumeration order.
func Cases(b ir.Bounds) []ir.GenerationCase {
	cases := make([]ir.GenerationCase, 0, Count(b))
	_ = Each(b, func(c ir.GenerationCase) error {
		cases = append(cases, c)
		return nil
	})
	return cases
}

// Each calls fn for every case in enumeration order and stops at the first
// error fn returns.
func Each(b ir.Bounds, fn func(ir.GenerationCase) error) error {
	for _, p := range Pairs(b) {
		tags, shared := p[0], p[1]
		for where := 0; where <= tags; where++ {
			for threshold := 0; threshold <= shared; threshold++ {
				c := ir.GenerationCase{
					Tags:            tags,
					Shared:          shared,
					Whereable:       where,
					FilterThreshold: threshold,
				}
				if err := fn(c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Count is the closed-form size of the space: the sum over (t, s) != (0, 0)
// of (t+1)(s+1). DefaultBounds yield 167.
func Count(b ir.Bounds) int {
	if b.MaxTags < 0 || b.MaxShared < 0 {
		return 0
	}
	tagSum := (b.MaxTags + 1) * (b.MaxTags + 2) / 2
	sharedSum := (b.MaxShared + 1) * (b.MaxShared + 2) / 2
	return tagSum*sharedSum - 1
}

// Pairs returns the (tags, shared) pairs in enumeration order.
func Pairs(b ir.Bounds) [][2]int {
	var pairs [][2]int
	for tags := 0; tags <= b.MaxTags; tags++ {
		for shared := 0; shared <= b.MaxShared; shared++ {
			if tags == 0 && shared == 0 {
				continue
			}
			pairs = append(pairs, [2]int{tags, shared})
		}
	}
	return pairs
}
