package util

import (
	"strconv"
)

// ParseUintOrZero 将字符串转换为无符号整数，空串或解析失败时返回 0。
// 用于可选的查询过滤参数，0 表示不过滤。
func ParseUintOrZero(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}
