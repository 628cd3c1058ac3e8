package domain

// DatasetInfo describes a dataset offered by the viewer.
type DatasetInfo struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}
