package video

import "time"

// fpsWindow is the sliding interval over which displayed frames are counted.
const fpsWindow = time.Second

// fpsCounter counts frames displayed within the last second.
type fpsCounter struct {
	times []time.Time
}

// tick records one displayed frame.
func (c *fpsCounter) tick(now time.Time) {
	c.prune(now)
	c.times = append(c.times, now)
}

// rate returns the number of frames displayed in the window ending at now.
func (c *fpsCounter) rate(now time.Time) int {
	c.prune(now)
	return len(c.times)
}

func (c *fpsCounter) prune(now time.Time) {
	cutoff := now.Add(-fpsWindow)
	i := 0
	for i < len(c.times) && !c.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		c.times = append(c.times[:0], c.times[i:]...)
	}
}
