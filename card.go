package treebloom

// Card holds the user-facing state around the animation: the greeting
// text and the currently highlighted photo.
type Card struct {
	CenterText string

	// activePhoto is -1 when no photo is highlighted.
	activePhoto int
}

// NewCard returns a card showing text with no photo highlighted.
func NewCard(text string) *Card {
	return &Card{CenterText: text, activePhoto: -1}
}

// ActivePhotoIndex returns the highlighted photo index, or -1.
func (c *Card) ActivePhotoIndex() int {
	return c.activePhoto
}

// SetActivePhotoIndex highlights photo i. Values below -1 clear the
// highlight.
func (c *Card) SetActivePhotoIndex(i int) {
	if i < -1 {
		i = -1
	}
	c.activePhoto = i
}

// NextPhoto highlights the photo after the current one, wrapping at count.
func (c *Card) NextPhoto(count int) {
	if count <= 0 {
		c.activePhoto = -1
		return
	}
	c.activePhoto = (c.activePhoto + 1) % count
}

// PrevPhoto highlights the photo before the current one, wrapping at count.
func (c *Card) PrevPhoto(count int) {
	if count <= 0 {
		c.activePhoto = -1
		return
	}
	if c.activePhoto <= 0 {
		c.activePhoto = count - 1
		return
	}
	c.activePhoto--
}

// clampActive drops the highlight if the collection shrank below it.
func (c *Card) clampActive(count int) {
	if c.activePhoto >= count {
		c.activePhoto = -1
	}
}

// Instructions returns the hint shown for phase.
func Instructions(phase Phase) string {
	switch phase {
	case PhaseTree:
		return "Show 'OPEN PALM' to bloom."
	case PhaseNebula:
		return "Show 'OPEN PALM' to rotate. 'CLOSED FIST' to reset."
	case PhaseBlooming:
		return "Magic happening..."
	}
	return "Resetting..."
}
