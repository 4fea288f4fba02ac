package common

// Embed colours
const (
	ColourOrange = 0xe6a23c
)
