package director

// Scenario describes the page to choreograph: viewport, platform
// preferences and the sections in document order.
type Scenario struct {
	Version       string    `yaml:"version" json:"version"`
	Viewport      Viewport  `yaml:"viewport" json:"viewport"`
	ReducedMotion bool      `yaml:"reduced_motion" json:"reduced_motion"`
	Pointer       string    `yaml:"pointer" json:"pointer"` // fine | coarse
	Seed          int64     `yaml:"seed" json:"seed"`
	Sections      []Section `yaml:"sections" json:"sections"`
}

type Viewport struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Section is one top-level block of the page. Which fields matter depends
// on Kind.
type Section struct {
	ID       string `yaml:"id" json:"id"`
	Kind     string `yaml:"kind" json:"kind"`
	Title    string `yaml:"title,omitempty" json:"title,omitempty"`
	Subtitle string `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Body     string `yaml:"body,omitempty" json:"body,omitempty"`
	// Height is a length such as "100vh" or "900px"; each kind has a default.
	Height string  `yaml:"height,omitempty" json:"height,omitempty"`
	Dwell  float64 `yaml:"dwell,omitempty" json:"dwell,omitempty"` // Tour pause in seconds
	Items  []Item  `yaml:"items,omitempty" json:"items,omitempty"`
	Track  []Item  `yaml:"track,omitempty" json:"track,omitempty"`
	Cases  []Case  `yaml:"cases,omitempty" json:"cases,omitempty"`
	Nodes  []Node  `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	URL    string  `yaml:"url,omitempty" json:"url,omitempty"`
}

type Item struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Case is one case study; Slides are asset keys of its artwork.
type Case struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Slides []string `yaml:"slides" json:"slides"`
}

// Node is a module-flow satellite placed at (X, Y) from the hub centre.
// With Curve set the marker bends through that control point.
type Node struct {
	ID    string  `yaml:"id" json:"id"`
	Label string  `yaml:"label" json:"label"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Curve *Point  `yaml:"curve,omitempty" json:"curve,omitempty"`
}

type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

const (
	KindHero        = "hero"
	KindCaseStudies = "case-studies"
	KindAbout       = "about"
	KindServices    = "services"
	KindHowIWork    = "how-i-work"
	KindSkills      = "skills"
	KindModuleFlow  = "module-flow"
	KindAscent      = "ascent"
	KindContact     = "contact"
)
