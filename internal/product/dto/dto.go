package dto

type ProductFilters struct {
	Name        string
	Category    string
	SearchQuery string
	Page        int
	PageSize    int
}
