package services

import (
	"math"
)

// Level curve: LevelOf(xp) = max(1, floor(sqrt(xp / 100))).
// 0–99 XP is level 1; the first boundary past level 1 is 400 XP (level 2).
const baseXPPerLevel = 100

// maxXP caps XP and points so crediting saturates instead of wrapping.
// Reward crediting must never fail the triggering domain action.
const maxXP = int64(1) << 62

// LevelOf returns the level derived from total XP. Monotonic non-decreasing,
// defined for all xp (negative values clamp to level 1).
func LevelOf(xp int64) int {
	if xp < 0 {
		return 1
	}
	level := int(math.Sqrt(float64(xp) / float64(baseXPPerLevel)))
	if level < 1 {
		return 1
	}
	return level
}

// XPForLevel returns the minimum total XP at which the given level is reached.
// Inverse of LevelOf; used by the read surface to show progress to next level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(level) * int64(level) * baseXPPerLevel
}

// saturatingAdd adds amount to total, clamping at maxXP.
func saturatingAdd(total, amount int64) int64 {
	if amount <= 0 {
		return total
	}
	if total > maxXP-amount {
		return maxXP
	}
	return total + amount
}
