package mixer

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Process renders the window of len(left) frames starting at absolute
// frame frame0 into left and right, overwriting them. Windows longer than
// the block size are rendered in block-size pieces.
func (g *Graph) Process(left, right []float64, frame0 int64) {
	n := min(len(left), len(right))
	bs := g.snap.BlockSize

	for start := 0; start < n; start += bs {
		end := min(start+bs, n)
		g.processBlock(left[start:end], right[start:end], frame0+int64(start))
	}
}

func (g *Graph) processBlock(left, right []float64, frame0 int64) {
	n := len(left)
	sr := g.snap.SampleRate

	for _, node := range g.order {
		l := node.out.Channel(0)[:n]
		r := node.out.Channel(1)[:n]

		// Aux tracks start from what their senders delivered this block.
		inL := node.in.Channel(0)[:n]
		inR := node.in.Channel(1)[:n]
		copy(l, inL)
		copy(r, inR)
		clear(inL)
		clear(inR)

		for i := range node.tr.Clips {
			node.tr.Clips[i].Render(l, r, frame0, sr, node.tr.Instrument)
		}

		node.chain.Process(l, r)

		if node.audible {
			node.feedSends(l, r, true)
		}

		if node.gainL != 1 {
			vecmath.ScaleBlockInPlace(l, node.gainL)
		}
		if node.gainR != 1 {
			vecmath.ScaleBlockInPlace(r, node.gainR)
		}

		if node.audible {
			node.feedSends(l, r, false)
		}
	}

	clear(left)
	clear(right)

	// Summation follows declared track order.
	for _, node := range g.nodes {
		if !node.audible {
			continue
		}

		vecmath.AddBlockInPlace(left, node.out.Channel(0)[:n])
		vecmath.AddBlockInPlace(right, node.out.Channel(1)[:n])
	}

	g.master.Process(left, right)
}

func (n *trackNode) feedSends(l, r []float64, preFader bool) {
	for _, s := range n.sends {
		if s.preFader != preFader || s.level == 0 || s.target == nil {
			continue
		}

		dstL := s.target.in.Channel(0)[:len(l)]
		dstR := s.target.in.Channel(1)[:len(r)]

		if s.level == 1 {
			vecmath.AddBlockInPlace(dstL, l)
			vecmath.AddBlockInPlace(dstR, r)

			continue
		}

		for i := range l {
			dstL[i] += l[i] * s.level
			dstR[i] += r[i] * s.level
		}
	}
}
