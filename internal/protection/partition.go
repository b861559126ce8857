package protection

import "slices"

// Span is a half-open range of chunk indexes covered by one group.
type Span struct {
	Start int
	End   int
}

// Len returns the number of chunks the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Group is an ordered run of chunks protected as one par2 unit. Name doubles
// as the staging directory name and the recovery base name.
type Group struct {
	Name   string
	Span   Span
	Chunks []Chunk

	// Direct groups are built in the working directory itself.
	Direct bool
}

// PartitionSpans computes the group index ranges for a chunk count under the
// given strategy. Pure: no chunk data is touched, so callers can plan a
// partition before any file exists.
func PartitionSpans(total int, strategy Strategy) []Span {
	if total <= 0 {
		return nil
	}
	if strategy.Direct {
		return []Span{{Start: 0, End: total}}
	}
	if strategy.UseSlidingWindow {
		return slidingSpans(total, strategy.WindowSize, strategy.WindowSlide)
	}
	return bucketSpans(total, strategy.GroupSize)
}

func bucketSpans(total, size int) []Span {
	if size <= 0 {
		return []Span{{Start: 0, End: total}}
	}
	var spans []Span
	for start := 0; start < total; start += size {
		spans = append(spans, Span{Start: start, End: min(start+size, total)})
	}
	return spans
}

// slidingSpans emits windows of exactly size chunks starting at multiples of
// slide while a full window fits. When chunks remain past the last full
// window, the final window is pulled back to [total-size, total) instead of
// being emitted short, overlapping its predecessor. A short group would
// waste par2's fixed per-invocation cost on a disproportionately small
// input, so no group is ever smaller than the window unless the whole
// archive is.
func slidingSpans(total, size, slide int) []Span {
	if size <= 0 || total <= size {
		return []Span{{Start: 0, End: total}}
	}
	if slide <= 0 {
		slide = size
	}
	var spans []Span
	covered := 0
	for start := 0; start+size <= total; start += slide {
		spans = append(spans, Span{Start: start, End: start + size})
		covered = start + size
	}
	if covered < total {
		spans = append(spans, Span{Start: total - size, End: total})
	}
	return spans
}

// Partition materialises the strategy's spans over the chunk sequence.
// Empty input yields no groups, and the caller aborts before any FEC work.
func Partition(chunks []Chunk, strategy Strategy) []Group {
	if len(chunks) == 0 {
		return nil
	}

	first := chunks[0]
	spans := PartitionSpans(len(chunks), strategy)
	groups := make([]Group, 0, len(spans))
	for _, span := range spans {
		group := Group{
			Span:   span,
			Chunks: slices.Clone(chunks[span.Start:span.End]),
		}
		if strategy.Direct {
			group.Name = BaseName(first.Archive, first.Increment)
			group.Direct = true
		} else {
			group.Name = GroupName(first.Archive, first.Increment, span.Start, span.End)
		}
		groups = append(groups, group)
	}
	return groups
}
