// Package templates holds the HTML components of the front end. The .templ
// sources are compiled with `templ generate`.
package templates

type EstimationListItem struct {
	ID           string
	ProjectName  string
	ProjectOwner string
	Status       string
	UpdatedDate  string
	GrandTotal   string
}

type EstimationListData struct {
	Items []EstimationListItem
	Error string
}

// DetailView is a formatted line detail.
type DetailView struct {
	Index       string
	Code        string
	Description string
	Volume      string
	Unit        string
	UnitPrice   string
	Total       string
	Precomputed bool // total came from the API rather than volume × unit price
}

// SectionView is a formatted work item with its subtotal.
type SectionView struct {
	Index       int
	ID          string
	Title       string
	Subtotal    string
	DetailCount int
	Details     []DetailView
}

type FieldView struct {
	Label string
	Value string
}

// ExportOption is one entry of the export menu.
type ExportOption struct {
	Label        string
	Action       string
	SupportsLogo bool
}

type EstimationViewData struct {
	ID            string
	ProjectName   string
	ProjectOwner  string
	Status        string
	CreatedDate   string
	Notes         string
	TaxRate       string
	Sections      []SectionView
	Fields        []FieldView
	Subtotal      string
	TaxAmount     string
	GrandTotal    string
	LineItemCount int
	Exports       []ExportOption
}
