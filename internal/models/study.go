// Package models holds the caller-side session types that sit between an
// external UI and the engine. A Study owns one engine Slice per channel and
// tracks which channel is current; the engine itself never knows about
// channels.
package models

import (
	"fmt"

	"kspaceexplorer/pkg/engine"
)

// Study is a channel-indexed collection of slices loaded from one source,
// for example one Slice per coil channel of a raw acquisition. Each Slice
// owns its buffers outright, so operations on the current channel (including
// shape-changing ones like undersampling with compression) never affect
// sibling channels.
type Study struct {
	slices  []*engine.Slice
	current int
}

// NewStudy builds a study over the given slices. At least one slice is
// required.
func NewStudy(slices ...*engine.Slice) (*Study, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("study requires at least one slice")
	}
	return &Study{slices: slices}, nil
}

// Channels returns the number of channels in the study.
func (st *Study) Channels() int { return len(st.slices) }

// Current returns the currently selected channel's slice.
func (st *Study) Current() *engine.Slice { return st.slices[st.current] }

// CurrentIndex returns the index of the currently selected channel.
func (st *Study) CurrentIndex() int { return st.current }

// Channel returns the slice for the given channel index.
func (st *Study) Channel(i int) (*engine.Slice, error) {
	if i < 0 || i >= len(st.slices) {
		return nil, fmt.Errorf("channel %d out of range [0,%d)", i, len(st.slices))
	}
	return st.slices[i], nil
}

// Select makes the given channel current.
func (st *Study) Select(i int) error {
	if i < 0 || i >= len(st.slices) {
		return fmt.Errorf("channel %d out of range [0,%d)", i, len(st.slices))
	}
	st.current = i
	return nil
}

// Next steps to the next (up true) or previous channel, wrapping around.
func (st *Study) Next(up bool) {
	if up {
		st.current = (st.current + 1) % len(st.slices)
	} else {
		st.current = (st.current - 1 + len(st.slices)) % len(st.slices)
	}
}

// RecomputeAll reruns the filter pipeline on every channel with the same
// options. Slices are independent, so failures are reported per channel.
func (st *Study) RecomputeAll(opts engine.Options) error {
	for i, s := range st.slices {
		if err := s.Recompute(opts); err != nil {
			return fmt.Errorf("failed to recompute channel %d: %v", i, err)
		}
	}
	return nil
}
