package util

import (
	"math"
	"strconv"
)

// MustParseInt 将字符串转换为整数，解析失败时返回默认值
func MustParseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// SafeDivide 除数为 0 时返回 0，避免 NaN/Inf
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Percent 返回 100*part/whole，whole 为 0 时返回 0
func Percent(part, whole int) float64 {
	return SafeDivide(float64(part)*100, float64(whole))
}
