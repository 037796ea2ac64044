package snapshot

import "snapshotd/internal/models"

type ChannelKind int

const (
	NumericChannel ChannelKind = iota
	TextChannel
)

// ChannelSpec names one channel of a series and the value used to left-pad it.
type ChannelSpec struct {
	Name          string
	Kind          ChannelKind
	NumberDefault models.Number
	TextDefault   string
}

// SeriesSpec lists the channels of a series. Authoritative names the channel
// whose clamped length every other channel is aligned to.
type SeriesSpec struct {
	Name          string
	Authoritative string
	Channels      []ChannelSpec
}

// AlignedSeries holds equal-length channels keyed by name.
type AlignedSeries struct {
	Len     int
	Numbers map[string][]models.Number
	Texts   map[string][]string
}

// Tail returns the last n elements of s, or s itself when it is not longer.
func Tail[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// PadLeft prepends def until s has length n. Longer slices are returned as is.
func PadLeft[T any](s []T, n int, def T) []T {
	if len(s) >= n {
		return s
	}
	out := make([]T, n)
	missing := n - len(s)
	for i := 0; i < missing; i++ {
		out[i] = def
	}
	copy(out[missing:], s)
	return out
}

// Fit makes s exactly n long, dropping from the front or padding the front.
func Fit[T any](s []T, n int, def T) []T {
	return PadLeft(Tail(s, n), n, def)
}

// AlignSeries applies the bounding and alignment rules to one raw series.
// It never fails: a non-object series or a non-array channel counts as empty.
func AlignSeries(raw any, shape SeriesSpec, maxPoints int) AlignedSeries {
	obj, _ := raw.(map[string]any)

	numbers := make(map[string][]models.Number)
	texts := make(map[string][]string)
	for _, ch := range shape.Channels {
		values, _ := obj[ch.Name].([]any)
		values = Tail(values, maxPoints)
		switch ch.Kind {
		case TextChannel:
			out := make([]string, len(values))
			for i, v := range values {
				out[i] = toText(v)
			}
			texts[ch.Name] = out
		default:
			out := make([]models.Number, len(values))
			for i, v := range values {
				out[i] = toNumber(v)
			}
			numbers[ch.Name] = out
		}
	}

	n := len(numbers[shape.Authoritative])
	if t, ok := texts[shape.Authoritative]; ok {
		n = len(t)
	}

	for _, ch := range shape.Channels {
		if ch.Name == shape.Authoritative {
			continue
		}
		switch ch.Kind {
		case TextChannel:
			texts[ch.Name] = Fit(texts[ch.Name], n, ch.TextDefault)
		default:
			numbers[ch.Name] = Fit(numbers[ch.Name], n, ch.NumberDefault)
		}
	}

	return AlignedSeries{Len: n, Numbers: numbers, Texts: texts}
}
