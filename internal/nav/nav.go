// Package nav holds the sidebar navigation table.
package nav

// Glyph references an icon by icon set and glyph name; the rendering layer
// decides how to draw it.
type Glyph struct {
	Set  string `json:"set"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Entry is one sidebar link.
type Entry struct {
	Title      string `json:"title"`
	Path       string `json:"path"`
	Icon       Glyph  `json:"icon"`
	StyleClass string `json:"style_class"`
}

const (
	iconSize   = 25
	styleClass = "nav-text"
)

var sidebar = []Entry{
	{Title: "Home", Path: "/", Icon: Glyph{Set: "fa", Name: "FaHome", Size: iconSize}, StyleClass: styleClass},
	{Title: "My Trips", Path: "/trips", Icon: Glyph{Set: "ci", Name: "CiLocationOn", Size: iconSize}, StyleClass: styleClass},
	{Title: "Flight", Path: "/flight", Icon: Glyph{Set: "pi", Name: "PiAirplaneTakeoffLight", Size: iconSize}, StyleClass: styleClass},
	{Title: "Accommodation", Path: "/accommodation", Icon: Glyph{Set: "fa", Name: "FaBed", Size: iconSize}, StyleClass: styleClass},
	{Title: "Itinerary", Path: "/itinerary", Icon: Glyph{Set: "ci", Name: "CiViewList", Size: iconSize}, StyleClass: styleClass},
	{Title: "Calendar", Path: "/calendar", Icon: Glyph{Set: "fa", Name: "FaCalendarAlt", Size: iconSize}, StyleClass: styleClass},
}

// Sidebar returns the navigation entries in display order.
// The slice is a copy; callers may modify it.
func Sidebar() []Entry {
	out := make([]Entry, len(sidebar))
	copy(out, sidebar)
	return out
}
