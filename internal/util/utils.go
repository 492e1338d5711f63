package util

import (
	"math"
	"os"
)

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Wrap01 wraps value into [0, 1)
func Wrap01(value float64) float64 {
	w := math.Mod(value, 1)
	if w < 0 {
		w += 1
	}
	// -tiny + 1 can round up to exactly 1
	if w >= 1 {
		w = 0
	}
	return w
}

// FloorToInt returns floor(value) as an int
func FloorToInt(value float64) int {
	return int(math.Floor(value))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}
