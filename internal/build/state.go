package build

import (
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/meta"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
)

// State is the data handed from stage to stage during one build. Stages run
// sequentially; fan-out tasks only write to their own slice index.
type State struct {
	Config   *config.Config
	Loader   content.Loader
	Recorder metrics.Recorder
	Writer   *output.Writer
	Report   *Report

	// Documents in loader order.
	Documents []content.Document
	// Pages holds the normalized metadata, parallel to Documents.
	Pages []meta.Page
	// Publish marks which documents get output; drafts are unpublished
	// unless build.include_drafts is set.
	Publish []bool
	// Tree is the navigation tree, available from build_navigation on.
	Tree *navtree.Node

	committed bool
}

// published returns the indexes of documents that produce output. When
// several documents share a path only the last one is kept, matching the
// navigation tree.
func (st *State) published() []int {
	last := make(map[string]int, len(st.Pages))
	for i, ok := range st.Publish {
		if ok {
			last[st.Pages[i].Path] = i
		}
	}
	idx := make([]int, 0, len(last))
	for i, ok := range st.Publish {
		if ok && last[st.Pages[i].Path] == i {
			idx = append(idx, i)
		}
	}
	return idx
}
