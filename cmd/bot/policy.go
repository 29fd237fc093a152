package main

import (
	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
)

var allDirs = [...]grid.Dir{grid.Up, grid.Right, grid.Down, grid.Left}

// chooseDir is a greedy food seeker. It never steps out of bounds or into the
// body when a safe move exists, and prefers moves that leave at least as much
// reachable space as the body is long.
func chooseDir(g *game.Game) grid.Dir {
	return pickDir(g.World(), g.Head(), g.Body(), g.Food(), g.Dir(), g.Growing())
}

func pickDir(world grid.World, head grid.Coord, body []grid.Coord, food grid.Coord, cur grid.Dir, growing bool) grid.Dir {
	blocked := make(map[grid.Coord]bool, len(body))
	// The tail moves away this step unless growth is pending.
	solid := body[:len(body)-1]
	if growing {
		solid = body
	}
	for _, c := range solid {
		blocked[c] = true
	}

	best := cur
	bestScore := -1 << 30
	for _, d := range allDirs {
		if d == cur.Opposite() {
			continue
		}
		next := head.Step(d)
		if !world.Contains(next) || blocked[next] {
			continue
		}
		score := -manhattan(next, food) * 4
		if d == cur {
			score++
		}
		if reachable(world, blocked, next, len(body)) < len(body) {
			score -= 1 << 20
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// reachable counts free cells connected to start, stopping once limit is hit.
func reachable(w grid.World, blocked map[grid.Coord]bool, start grid.Coord, limit int) int {
	seen := map[grid.Coord]bool{start: true}
	queue := []grid.Coord{start}
	for len(queue) > 0 && len(seen) < limit {
		c := queue[0]
		queue = queue[1:]
		for _, d := range allDirs {
			n := c.Step(d)
			if !w.Contains(n) || blocked[n] || seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return len(seen)
}

func manhattan(a, b grid.Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
