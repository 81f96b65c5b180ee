package sprite

import (
	"fmt"

	"maploader/internal/obs"
)

// Store maps names to sprite images and accumulates a drainable delta
// of mutations for the renderer. It is owned by a single logical
// thread; the renderer drains the delta once per frame via GetDirty.
type Store struct {
	log     obs.Logger
	metrics *obs.Metrics
	sprites map[string]*Image
	// dirty holds the net mutation per name since the last drain; a
	// nil value marks a removal.
	dirty map[string]*Image
}

func NewStore(log obs.Logger, metrics *obs.Metrics) *Store {
	if log == nil {
		log = obs.NewNop()
	}
	return &Store{
		log:     log,
		metrics: metrics,
		sprites: make(map[string]*Image),
		dirty:   make(map[string]*Image),
	}
}

// SetSprite inserts or replaces the image under name. A replacement
// that would change the pixel dimensions is rejected: a downstream
// atlas slot cannot resize in place. Pixel ratio and content may change
// freely.
func (s *Store) SetSprite(name string, image *Image) {
	if image == nil {
		return
	}
	if existing, ok := s.sprites[name]; ok {
		if existing.Width != image.Width || existing.Height != image.Height {
			s.log.Warn(fmt.Sprintf("Can't change sprite dimensions for '%s'", name))
			s.metrics.RecordSpriteDimensionRejection()
			return
		}
	}
	s.sprites[name] = image
	s.dirty[name] = image
}

// SetSprites applies the SetSprite rule to every entry.
func (s *Store) SetSprites(images map[string]*Image) {
	for name, image := range images {
		s.SetSprite(name, image)
	}
}

// RemoveSprite deletes the entry if present and records a removal
// marker. Removing an absent name is a no-op and leaves the delta
// untouched.
func (s *Store) RemoveSprite(name string) {
	if _, ok := s.sprites[name]; !ok {
		return
	}
	delete(s.sprites, name)
	s.dirty[name] = nil
}

// GetSprite returns the current image, or nil for an unknown name. A
// miss is expected during style transitions and logs at info level.
func (s *Store) GetSprite(name string) *Image {
	if image, ok := s.sprites[name]; ok {
		return image
	}
	s.log.Info(fmt.Sprintf("Can't find sprite named '%s'", name))
	s.metrics.RecordSpriteMiss()
	return nil
}

// GetDirty returns the mutations accumulated since the last drain and
// clears them. Multiple mutations to a name coalesce to its final
// state; a nil entry means the name was removed.
func (s *Store) GetDirty() map[string]*Image {
	dirty := s.dirty
	s.dirty = make(map[string]*Image)
	return dirty
}
