package sketch

import (
	"fmt"
	"sync"

	"github.com/devista-consulting/arduino-sketch-vault/internal/replay"
)

// Store manages the sketch.yaml document on disk. Every operation re-reads
// the file so hand edits made between operations are picked up.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// ListProfiles returns the usable profiles in document order.
func (s *Store) ListProfiles() ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		return nil, err
	}
	return doc.Profiles(), nil
}

// ActiveProfile resolves the document's default profile.
func (s *Store) ActiveProfile() (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		return Profile{}, false, err
	}
	p, ok := doc.ActiveProfile()
	return p, ok, nil
}

// CreateProfile adds a new named profile and writes the document back.
func (s *Store) CreateProfile(name, fqbn, platform string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		return err
	}
	if err := doc.AddProfile(name, fqbn, platform); err != nil {
		return err
	}
	return doc.Save(s.path)
}

// ApplyProfile makes name the default profile and replays its board
// configuration into the IDE. The default_profile write happens before the
// first command execution: the IDE fires change events while commands run,
// and if the auto-sync listener saw them with the old pointer still in
// place it would overwrite the previous profile's fqbn.
func (s *Store) ApplyProfile(name string, sync *replay.Synchronizer) (replay.Result, error) {
	s.mu.Lock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		s.mu.Unlock()
		return replay.Result{}, err
	}

	var target Profile
	found := false
	for _, p := range doc.Profiles() {
		if p.Name == name {
			target = p
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return replay.Result{}, fmt.Errorf("profile %q not found", name)
	}

	doc.SetDefaultProfile(name)
	if err := doc.Save(s.path); err != nil {
		s.mu.Unlock()
		return replay.Result{}, err
	}
	s.mu.Unlock()

	return sync.Apply(target.FQBN), nil
}

// UpdateActiveFQBN rewrites the active profile's fqbn and platform entry in
// place. Best-effort: when the document is missing, unparseable, or has no
// resolvable active profile, nothing happens and no error is reported, so
// background auto-sync can never take the tool down over a hand-edited file.
func (s *Store) UpdateActiveFQBN(fqbn, platform string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		return
	}
	if !doc.SetActiveFQBN(fqbn, platform) {
		return
	}
	_ = doc.Save(s.path)
}

// SwitchDefault updates only the default_profile pointer.
func (s *Store) SwitchDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadDocument(s.path)
	if err != nil {
		return err
	}
	doc.SetDefaultProfile(name)
	return doc.Save(s.path)
}
