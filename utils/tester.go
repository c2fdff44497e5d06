package utils

import (
	"sync/atomic"

	"github.com/swagata71/ds-practice-2025/configs"
)

var callID = uint64(0)

func GetCallID() uint64 {
	return atomic.AddUint64(&callID, 1) % configs.MaxCallID
}

func Max(x int, y int) int {
	if x > y {
		return x
	}
	return y
}

func Min(x int, y int) int {
	if x < y {
		return x
	}
	return y
}
