package image

// AspectRatio is the closed set of supported output shapes.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "2:3"
	AspectLandscape AspectRatio = "3:2"
	AspectWide      AspectRatio = "16:9"
)

// DefaultAspectRatio is used for absent or unrecognised values.
const DefaultAspectRatio = AspectSquare

// Dimensions is a pixel size handed to the diffusion model.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type aspectPreset struct {
	label string
	size  Dimensions
}

var aspectPresets = map[AspectRatio]aspectPreset{
	AspectSquare:    {label: "Square (1:1)", size: Dimensions{Width: 1024, Height: 1024}},
	AspectPortrait:  {label: "Portrait (2:3)", size: Dimensions{Width: 832, Height: 1216}},
	AspectLandscape: {label: "Landscape (3:2)", size: Dimensions{Width: 1216, Height: 832}},
	AspectWide:      {label: "Wide (16:9)", size: Dimensions{Width: 1344, Height: 768}},
}

// AspectRatios lists the supported ratios in display order.
func AspectRatios() []AspectRatio {
	return []AspectRatio{AspectSquare, AspectPortrait, AspectLandscape, AspectWide}
}

// ParseAspectRatio matches raw against the supported keys exactly. Anything
// else, including case or whitespace variants, defaults to 1:1.
func ParseAspectRatio(raw string) AspectRatio {
	ratio := AspectRatio(raw)
	if _, ok := aspectPresets[ratio]; ok {
		return ratio
	}
	return DefaultAspectRatio
}

// Dimensions returns the fixed pixel size for the ratio.
func (a AspectRatio) Dimensions() Dimensions {
	if p, ok := aspectPresets[a]; ok {
		return p.size
	}
	return aspectPresets[DefaultAspectRatio].size
}

// Label returns the human readable option name.
func (a AspectRatio) Label() string {
	if p, ok := aspectPresets[a]; ok {
		return p.label
	}
	return aspectPresets[DefaultAspectRatio].label
}

// Style is the closed set of prompt style presets.
type Style string

const (
	StyleNone       Style = "none"
	StyleCinematic  Style = "cinematic"
	Style3D         Style = "3d"
	StyleAnime      Style = "anime"
	StyleCyberpunk  Style = "cyberpunk"
	StylePixel      Style = "pixel"
	StyleClaymation Style = "claymation"
)

type stylePreset struct {
	label       string
	keywords    string
	description string
}

var stylePresets = map[Style]stylePreset{
	StyleNone:       {label: "None", keywords: "", description: "No style enhancement"},
	StyleCinematic:  {label: "Cinematic", keywords: "cinematic lighting, 8k, hyper-realistic, shot on IMAX, dramatic", description: "Hollywood-grade visuals"},
	Style3D:         {label: "3D Render", keywords: "Unreal Engine 5 render, 3D, octane render, ray tracing", description: "Stunning 3D graphics"},
	StyleAnime:      {label: "Anime", keywords: "anime style, studio ghibli, vibrant, detailed line art", description: "Animated masterpiece"},
	StyleCyberpunk:  {label: "Cyberpunk", keywords: "neon lights, cyberpunk, futuristic, blade runner style", description: "Futuristic noir"},
	StylePixel:      {label: "Retro Game / Pixel Art", keywords: "pixel art, 8-bit, retro game style, low poly, vibrant colors", description: "Nostalgic 8-bit vibes"},
	StyleClaymation: {label: "Claymation", keywords: "claymation, stop motion, plasticine, Aardman style", description: "Stop-motion charm"},
}

// Styles lists the supported presets in display order.
func Styles() []Style {
	return []Style{StyleNone, StyleCinematic, Style3D, StyleAnime, StyleCyberpunk, StylePixel, StyleClaymation}
}

// ParseStyle matches raw against the preset keys exactly, defaulting to
// StyleNone.
func ParseStyle(raw string) Style {
	style := Style(raw)
	if _, ok := stylePresets[style]; ok {
		return style
	}
	return StyleNone
}

// Keywords returns the literal fragment appended to prompts. Unknown styles
// contribute nothing.
func (s Style) Keywords() string {
	return stylePresets[s].keywords
}

// Label returns the human readable option name.
func (s Style) Label() string {
	if p, ok := stylePresets[s]; ok {
		return p.label
	}
	return stylePresets[StyleNone].label
}

// Description returns the one-line option blurb.
func (s Style) Description() string {
	if p, ok := stylePresets[s]; ok {
		return p.description
	}
	return stylePresets[StyleNone].description
}

// ComposePrompt appends the style keywords as "{prompt}, {keywords}".
func ComposePrompt(prompt string, style Style) string {
	keywords := style.Keywords()
	if keywords == "" {
		return prompt
	}
	return prompt + ", " + keywords
}
