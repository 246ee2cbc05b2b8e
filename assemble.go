package parquet

// This file implements the repetition assembler (C5): converting between a
// flat (value, repetition-level) stream and nested sequences of arbitrary
// depth R, per the Dremel striping scheme.
//
// Definition levels are resolved earlier, by the page decoder (C4): by the
// time values reach Assemble, a null Value already carries the depth at
// which it is absent. Assemble operates purely on the repetition axis.

// Assemble converts a flat stream of R-deep values into the sequence of
// top-level R-deep nested containers it represents. R == 0 means no
// nesting: values is returned unchanged.
//
// Maintains a stack of R open containers; a repetition level of 0 closes
// and flushes all of them, starting a fresh top-level container chain. A
// repetition level r in [1, R] keeps the outer r containers and resets the
// inner R-r, appending the value to the innermost.
func Assemble(values []Value, repLevels []int32, r int) []Value {
	if r == 0 {
		return values
	}

	open := make([][]Value, r)
	var results []Value
	started := false

	closeLevels := func(down int) {
		for lvl := r; lvl > down; lvl-- {
			child := open[lvl-1]
			open[lvl-1] = nil
			wrapped := ListValue(child)
			if lvl == 1 {
				results = append(results, wrapped)
			} else {
				open[lvl-2] = append(open[lvl-2], wrapped)
			}
		}
	}

	for i, v := range values {
		level := int(repLevels[i])
		if level == 0 {
			if started {
				closeLevels(0)
			}
			started = true
		} else {
			closeLevels(level)
		}
		open[r-1] = append(open[r-1], v)
	}
	if started {
		closeLevels(0)
	}

	return results
}

// Disassemble is the inverse of Assemble: given the top-level sequence of
// R-deep nested containers, it emits the flat pre-order value stream and
// its repetition-level stream.
//
// Traversal is depth-first pre-order. The repetition level of a value is 0
// for the very first value overall; otherwise it is the shallowest
// ancestor-container depth at which this value's container path diverges
// from the immediately preceding value's, or R if the paths agree at every
// depth (i.e. both values live in the same innermost container).
func Disassemble(nested []Value, r int) ([]Value, []int32) {
	if r == 0 {
		reps := make([]int32, len(nested))
		return append([]Value(nil), nested...), reps
	}

	var values []Value
	var reps []int32

	curPath := make([]int, r)
	var prevPath []int

	var walk func(node Value, depth int)
	walk = func(node Value, depth int) {
		for i, c := range node.List() {
			if depth == r {
				var rep int32
				if prevPath == nil {
					rep = 0
				} else {
					d := 1
					for d <= r && prevPath[d-1] == curPath[d-1] {
						d++
					}
					if d > r {
						rep = int32(r)
					} else {
						rep = int32(d - 1)
					}
				}
				values = append(values, c)
				reps = append(reps, rep)
				prevPath = append([]int(nil), curPath...)
			} else {
				curPath[depth] = i
				walk(c, depth+1)
			}
		}
	}

	for i, rec := range nested {
		curPath[0] = i
		walk(rec, 1)
	}

	return values, reps
}
