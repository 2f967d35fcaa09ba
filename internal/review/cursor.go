package review

// Cursor is a position within a collection of n cards.
//
// The position is undefined while the collection is empty. Once the cursor reaches the final
// card, reachedEnd stays set until the cursor is discarded.
type Cursor struct {
	index      int
	defined    bool
	reachedEnd bool
}

// Reset moves the cursor to the first of n cards.
//
// A single card is the final card, so showing it marks the deck as reviewed. This differs
// on purpose from [Cursor.Next], which only sets reachedEnd when leaving index n-2; without
// it a one-card deck could never be exported.
func (c *Cursor) Reset(n int) {
	c.index = 0
	c.defined = n > 0
	if n == 1 {
		c.reachedEnd = true
	}
}

// Index returns the current position; ok is false when the cursor is undefined.
func (c *Cursor) Index() (i int, ok bool) {
	return c.index, c.defined
}

func (c *Cursor) ReachedEnd() bool { return c.reachedEnd }

// Next advances within n cards. It does nothing at the last card.
func (c *Cursor) Next(n int) {
	if !c.defined || c.index >= n-1 {
		return
	}
	if c.index == n-2 {
		c.reachedEnd = true
	}
	c.index++
}

// Previous steps back. It does nothing at the first card.
func (c *Cursor) Previous() {
	if !c.defined || c.index == 0 {
		return
	}
	c.index--
}

// Clamp keeps the cursor valid after the collection shrank to n cards.
func (c *Cursor) Clamp(n int) {
	if n <= 0 {
		c.index = 0
		c.defined = false
		return
	}
	if c.index >= n {
		c.index = n - 1
	}
}
