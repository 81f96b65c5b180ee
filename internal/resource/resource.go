package resource

// Kind identifies the content category of a fetch target. Downstream
// consumers pick decoders and cache policies off it.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindStyle
	KindSource
	KindTile
	KindGlyphs
	KindSpriteImage
	KindSpriteJSON
)

func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindSource:
		return "source"
	case KindTile:
		return "tile"
	case KindGlyphs:
		return "glyphs"
	case KindSpriteImage:
		return "sprite-image"
	case KindSpriteJSON:
		return "sprite-json"
	default:
		return "unknown"
	}
}

// Resource identifies one fetchable target. Values are immutable.
type Resource struct {
	Kind Kind
	URL  string
}
