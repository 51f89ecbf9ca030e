package repository

// pageWindow normalises page/size input into a LIMIT/OFFSET pair.
func pageWindow(page, size, defaultSize, maxSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	return size, (page - 1) * size
}
