package remote

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Wire vocabulary, comma-separated text frames:
//
//	out  get,<start>,<end>   range query for linear indices [start,end)
//	out  c,<index>           mark index checked
//	out  u,<index>           mark index unchecked
//	in   get,<i>:<bit>,...   range answer; bit is 1 (checked) or 0 (unchecked)
//	in   c,<index>           some viewer checked index
//	in   u,<index>           some viewer unchecked index
//
// There is no request/response correlation: an inbound get frame is merged
// against whatever indices it names, even when the viewport has moved on.

// ErrMalformed marks a frame that names a known command but cannot be parsed.
var ErrMalformed = errors.New("malformed frame")

// ErrUnknownPrefix marks a frame with an unrecognized command word.
var ErrUnknownPrefix = errors.New("unknown message prefix")

// Command is an outgoing instruction for the authority.
type Command interface {
	Encode() string
}

// RangeQuery asks for the checked status of linear indices [Start, End).
type RangeQuery struct {
	Start, End int
}

// Check marks Index checked on the authority.
type Check struct {
	Index int
}

// Uncheck marks Index unchecked on the authority.
type Uncheck struct {
	Index int
}

func (q RangeQuery) Encode() string { return fmt.Sprintf("get,%d,%d", q.Start, q.End) }
func (c Check) Encode() string      { return fmt.Sprintf("c,%d", c.Index) }
func (u Uncheck) Encode() string    { return fmt.Sprintf("u,%d", u.Index) }

// ParseCommand decodes one command frame, the server-side counterpart of
// ParseEvent. The authority drops frames on any error.
func ParseCommand(frame string) (Command, error) {
	parts := strings.Split(frame, ",")
	switch parts[0] {
	case "get":
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, frame)
		}
		start, err := strconv.Atoi(parts[1])
		if err != nil || start < 0 {
			return nil, fmt.Errorf("%w: bad start %q", ErrMalformed, parts[1])
		}
		end, err := strconv.Atoi(parts[2])
		if err != nil || end < 0 {
			return nil, fmt.Errorf("%w: bad end %q", ErrMalformed, parts[2])
		}
		return RangeQuery{Start: start, End: end}, nil
	case "c", "u":
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, frame)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return nil, fmt.Errorf("%w: bad index %q", ErrMalformed, parts[1])
		}
		if parts[0] == "c" {
			return Check{Index: index}, nil
		}
		return Uncheck{Index: index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, parts[0])
	}
}

// Event is a typed inbound frame.
type Event interface {
	isEvent()
	Encode() string
}

// RangeResult is the authority's answer to a range query: explicit bits for
// the indices it chose to list. Indices it did not list are unspecified.
type RangeResult struct {
	States map[int]bool
}

// Checked reports that some viewer (possibly this one) checked Index.
type Checked struct {
	Index int
}

// Unchecked reports that some viewer unchecked Index.
type Unchecked struct {
	Index int
}

func (RangeResult) isEvent() {}
func (Checked) isEvent()     {}
func (Unchecked) isEvent()   {}

// Encode renders the range answer with indices in ascending order.
func (r RangeResult) Encode() string {
	indices := make([]int, 0, len(r.States))
	for index := range r.States {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	var b strings.Builder
	b.WriteString("get")
	for _, index := range indices {
		bit := "0"
		if r.States[index] {
			bit = "1"
		}
		fmt.Fprintf(&b, ",%d:%s", index, bit)
	}
	return b.String()
}

func (c Checked) Encode() string   { return fmt.Sprintf("c,%d", c.Index) }
func (u Unchecked) Encode() string { return fmt.Sprintf("u,%d", u.Index) }

// ParseEvent decodes one inbound text frame. Callers are expected to drop the
// frame on any error: ErrUnknownPrefix for foreign commands, ErrMalformed for
// recognized commands with a bad payload.
func ParseEvent(frame string) (Event, error) {
	parts := strings.Split(frame, ",")
	switch parts[0] {
	case "get":
		states := make(map[int]bool, len(parts)-1)
		for _, pair := range parts[1:] {
			if pair == "" {
				continue
			}
			colon := strings.IndexByte(pair, ':')
			if colon <= 0 {
				return nil, fmt.Errorf("%w: bad pair %q", ErrMalformed, pair)
			}
			index, err := strconv.Atoi(pair[:colon])
			if err != nil || index < 0 {
				return nil, fmt.Errorf("%w: bad index in %q", ErrMalformed, pair)
			}
			switch pair[colon+1:] {
			case "1":
				states[index] = true
			case "0":
				states[index] = false
			default:
				return nil, fmt.Errorf("%w: bad bit in %q", ErrMalformed, pair)
			}
		}
		return RangeResult{States: states}, nil
	case "c", "u":
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, frame)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return nil, fmt.Errorf("%w: bad index %q", ErrMalformed, parts[1])
		}
		if parts[0] == "c" {
			return Checked{Index: index}, nil
		}
		return Unchecked{Index: index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, parts[0])
	}
}
