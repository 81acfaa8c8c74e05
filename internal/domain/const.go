package domain

const (
	// Pagination constants
	DEFAULT_PER_PAGE = 20
	MAX_PER_PAGE     = 100

	// Verified levels, shared by creators and collections
	VERIFIED_LEVEL_NONE     = 0
	VERIFIED_LEVEL_VERIFIED = 1
	VERIFIED_LEVEL_FEATURED = 2
)
