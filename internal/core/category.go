package core

// Presentation holds the display hints for a category. The category domain
// itself is open: unknown values are never rejected in the data path, they
// only fall back to the default presentation here.
type Presentation struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// DefaultCategories is the suggestion list offered by the creation flow.
// It is not a closed enum; any string is a valid category.
var DefaultCategories = []string{
	"Work", "Personal", "Health", "Travel", "Study",
	"Music", "Movies", "Sports", "Reading", "Writing",
	"Cooking", "Shopping", "Cleaning", "Other",
}

var presentations = map[string]Presentation{
	"Work":     {Color: "blue", Icon: "briefcase"},
	"Personal": {Color: "green", Icon: "person"},
	"Health":   {Color: "red", Icon: "heart"},
	"Travel":   {Color: "orange", Icon: "airplane"},
	"Study":    {Color: "purple", Icon: "book"},
	"Music":    {Color: "yellow", Icon: "music-note"},
	"Movies":   {Color: "gray", Icon: "film"},
	"Sports":   {Color: "cyan", Icon: "sports-court"},
	"Reading":  {Color: "brown", Icon: "book-closed"},
	"Writing":  {Color: "pink", Icon: "pencil"},
	"Cooking":  {Color: "teal", Icon: "fork-knife"},
	"Shopping": {Color: "indigo", Icon: "cart"},
	"Cleaning": {Color: "gray", Icon: "scale"},
}

var unknownPresentation = Presentation{Color: "blue", Icon: "question-mark"}

// PresentationFor returns the display hints for a category, falling back to
// a fixed default for categories outside the known set. Total: never fails.
func PresentationFor(category string) Presentation {
	if p, ok := presentations[category]; ok {
		return p
	}
	return unknownPresentation
}
