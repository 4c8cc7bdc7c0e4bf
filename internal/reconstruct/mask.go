package reconstruct

// mask2D is a dense boolean grid over an n×n pixel array, used by the
// connected-component pass inside GetTriggeringState.
type mask2D struct {
	n    int
	data []bool
}

func newMask2D(n int) *mask2D {
	return &mask2D{n: n, data: make([]bool, n*n)}
}

func (m *mask2D) idx(x, y int) int { return x*m.n + y }

func (m *mask2D) get(x, y int) bool {
	if x < 0 || x >= m.n || y < 0 || y >= m.n {
		return false
	}
	return m.data[m.idx(x, y)]
}

func (m *mask2D) set(x, y int, v bool) {
	m.data[m.idx(x, y)] = v
}

// largestComponent returns the size of the largest 8-connected component of
// true cells in m, via a stack-based (depth-first) flood fill.
func largestComponent(m *mask2D) int {
	visited := make([]bool, len(m.data))
	best := 0
	queue := make([][2]int, 0, len(m.data))
	for x := 0; x < m.n; x++ {
		for y := 0; y < m.n; y++ {
			if !m.get(x, y) || visited[m.idx(x, y)] {
				continue
			}
			queue = queue[:0]
			queue = append(queue, [2]int{x, y})
			visited[m.idx(x, y)] = true
			size := 0
			for len(queue) > 0 {
				cell := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				size++
				cx, cy := cell[0], cell[1]
				for dx := -1; dx <= 1; dx++ {
					for dy := -1; dy <= 1; dy++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := cx+dx, cy+dy
						if !m.get(nx, ny) || visited[m.idx(nx, ny)] {
							continue
						}
						visited[m.idx(nx, ny)] = true
						queue = append(queue, [2]int{nx, ny})
					}
				}
			}
			if size > best {
				best = size
			}
		}
	}
	return best
}

// mask3D is a dense boolean grid over (pixel_x, pixel_y, time_bin), used to
// track the triggered/retained/visited sets through ClearNoise's pipeline.
type mask3D struct {
	n, bins int
	data    []bool
}

func newMask3D(n, bins int) *mask3D {
	return &mask3D{n: n, bins: bins, data: make([]bool, n*n*bins)}
}

func (m *mask3D) idx(x, y, t int) int { return (x*m.n+y)*m.bins + t }

func (m *mask3D) get(x, y, t int) bool {
	if x < 0 || x >= m.n || y < 0 || y >= m.n || t < 0 || t >= m.bins {
		return false
	}
	return m.data[m.idx(x, y, t)]
}

func (m *mask3D) set(x, y, t int, v bool) {
	if x < 0 || x >= m.n || y < 0 || y >= m.n || t < 0 || t >= m.bins {
		return
	}
	m.data[m.idx(x, y, t)] = v
}

// clearTime zeroes every cell at time bin t, used when a frame fails to
// trigger and its hot pixels should not seed the plane fit or flood.
func (m *mask3D) clearTime(t int) {
	for x := 0; x < m.n; x++ {
		for y := 0; y < m.n; y++ {
			m.set(x, y, t, false)
		}
	}
}

// clearPixel zeroes every time bin for pixel (x,y), used by FindPlaneSubset
// to drop a pixel whose direction falls outside the plane threshold.
func (m *mask3D) clearPixel(x, y int) {
	for t := 0; t < m.bins; t++ {
		m.set(x, y, t, false)
	}
}

// countTrue returns how many time bins are set for pixel (x,y).
func (m *mask3D) countTrue(x, y int) int {
	n := 0
	for t := 0; t < m.bins; t++ {
		if m.get(x, y, t) {
			n++
		}
	}
	return n
}

// any reports whether any cell in m is set.
func (m *mask3D) any() bool {
	for _, v := range m.data {
		if v {
			return true
		}
	}
	return false
}

func (m *mask3D) clone() *mask3D {
	out := &mask3D{n: m.n, bins: m.bins, data: make([]bool, len(m.data))}
	copy(out.data, m.data)
	return out
}
