package ui

// updateViewportContent refreshes the viewport for states that scroll.
func (m *Model) updateViewportContent() {
	switch m.state {
	case stateBrowse:
		m.updateBrowseViewport()
	case stateDetail:
		m.viewport.SetContent(m.renderDetailBody())
	}
}

// scrollTo keeps line visible with a few rows of context around it.
func (m *Model) scrollTo(line int) {
	h := m.viewport.Height
	if h <= 0 {
		return
	}
	margin := min(3, (h-1)/2)
	top := m.viewport.YOffset
	switch {
	case line-margin < top:
		m.viewport.SetYOffset(max(0, line-margin))
	case line+margin > top+h-1:
		m.viewport.SetYOffset(line + margin - h + 1)
	}
}
