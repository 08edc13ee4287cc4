package layers

// imageShape is the (channels, height, width) interpretation of a flat
// []float64 buffer shared by the convolutional/pooling/upsample kinds.
type imageShape struct {
	channels, height, width int
}

func (s imageShape) size() int { return s.channels * s.height * s.width }

func (s imageShape) at(buf []float64, c, y, x int) float64 {
	return buf[(c*s.height+y)*s.width+x]
}

func (s imageShape) set(buf []float64, c, y, x int, v float64) {
	buf[(c*s.height+y)*s.width+x] = v
}
