package view

// PageSize 列表固定每页条数
const PageSize = 10

// PageCount ceil(n / PageSize)
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Paginate 返回第page页（1起）的切片，越界返回空切片
func Paginate[T any](list []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(list) {
		return []T{}
	}
	end := start + PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
