package sketch

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the declarative project file maintained alongside a sketch.
const FileName = "sketch.yaml"

// DefaultProfileName is assumed when the document has no default_profile.
const DefaultProfileName = "default"

// Profile is one named board configuration from the document.
type Profile struct {
	Name      string
	FQBN      string
	Libraries []string
}

// Document is a parsed sketch.yaml. It is edited through targeted node
// surgery so that user-maintained content (comments, key order, the
// libraries and platforms sections) survives a round-trip untouched except
// for the one field being changed.
type Document struct {
	root yaml.Node
}

// ParseDocument parses sketch.yaml content. Syntactically invalid YAML is an
// error; a hand-corrupted document is not something to paper over silently.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d.root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &d, nil
}

// LoadDocument reads and parses the document at path. A missing file yields
// an empty document, not an error.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{}, nil
		}
		return nil, err
	}
	return ParseDocument(data)
}

// Bytes serializes the document with two-space indent, preserving the node
// tree's key order.
func (d *Document) Bytes() ([]byte, error) {
	root := d.mapping(false)
	if root == nil {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Profiles returns every profile that has a non-empty fqbn, in document
// order. Profiles without an fqbn are unusable and silently skipped.
func (d *Document) Profiles() []Profile {
	profiles := d.lookup(d.mapping(false), "profiles")
	if profiles == nil || profiles.Kind != yaml.MappingNode {
		return nil
	}

	var out []Profile
	for i := 0; i+1 < len(profiles.Content); i += 2 {
		name := profiles.Content[i].Value
		record := profiles.Content[i+1]
		if record.Kind != yaml.MappingNode {
			continue
		}
		fqbnNode := d.lookup(record, "fqbn")
		if fqbnNode == nil || fqbnNode.Value == "" {
			continue
		}
		p := Profile{Name: name, FQBN: fqbnNode.Value}
		if libs := d.lookup(record, "libraries"); libs != nil && libs.Kind == yaml.SequenceNode {
			for _, lib := range libs.Content {
				p.Libraries = append(p.Libraries, lib.Value)
			}
		}
		out = append(out, p)
	}
	return out
}

// DefaultProfile returns the document's default_profile field, or
// DefaultProfileName when absent.
func (d *Document) DefaultProfile() string {
	if n := d.lookup(d.mapping(false), "default_profile"); n != nil && n.Value != "" {
		return n.Value
	}
	return DefaultProfileName
}

// ActiveProfile resolves the default profile against the usable profile
// list. A dangling default_profile yields ok=false, not an error.
func (d *Document) ActiveProfile() (Profile, bool) {
	name := d.DefaultProfile()
	for _, p := range d.Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// SetDefaultProfile updates or inserts the default_profile field.
func (d *Document) SetDefaultProfile(name string) {
	root := d.mapping(true)
	if n := d.lookup(root, "default_profile"); n != nil {
		n.SetString(name)
		return
	}
	var key, value yaml.Node
	key.SetString("default_profile")
	value.SetString(name)
	root.Content = append(root.Content, &key, &value)
}

// AddProfile inserts a new profile record with the given fqbn, a single
// platform entry, and an empty libraries list. Duplicate names are rejected.
func (d *Document) AddProfile(name, fqbn, platform string) error {
	root := d.mapping(true)
	profiles := d.lookup(root, "profiles")
	if profiles == nil {
		var key yaml.Node
		key.SetString("profiles")
		profiles = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content, &key, profiles)
	}
	if d.lookup(profiles, name) != nil {
		return fmt.Errorf("profile %q already exists", name)
	}

	record := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendScalar(record, "fqbn", fqbn)

	platformEntry := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendScalar(platformEntry, "platform", platform)
	var platformsKey yaml.Node
	platformsKey.SetString("platforms")
	record.Content = append(record.Content, &platformsKey,
		&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{platformEntry}})

	var libsKey yaml.Node
	libsKey.SetString("libraries")
	record.Content = append(record.Content, &libsKey,
		&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle})

	var nameKey yaml.Node
	nameKey.SetString(name)
	profiles.Content = append(profiles.Content, &nameKey, record)
	return nil
}

// SetActiveFQBN replaces the active profile's fqbn and its first platform
// entry, leaving everything else in the document untouched. It reports
// whether an active profile was found to edit.
func (d *Document) SetActiveFQBN(fqbn, platform string) bool {
	profiles := d.lookup(d.mapping(false), "profiles")
	if profiles == nil || profiles.Kind != yaml.MappingNode {
		return false
	}
	name := d.DefaultProfile()

	record := d.lookup(profiles, name)
	if record == nil || record.Kind != yaml.MappingNode {
		return false
	}
	fqbnNode := d.lookup(record, "fqbn")
	if fqbnNode == nil {
		return false
	}
	fqbnNode.SetString(fqbn)

	if platform == "" {
		return true
	}
	platforms := d.lookup(record, "platforms")
	if platforms != nil && platforms.Kind == yaml.SequenceNode && len(platforms.Content) > 0 {
		if entry := platforms.Content[0]; entry.Kind == yaml.MappingNode {
			if n := d.lookup(entry, "platform"); n != nil {
				n.SetString(platform)
			}
		}
	}
	return true
}

// mapping returns the document's top-level mapping node, creating the tree
// when create is true and the document is empty.
func (d *Document) mapping(create bool) *yaml.Node {
	if d.root.Kind == yaml.DocumentNode && len(d.root.Content) > 0 {
		if m := d.root.Content[0]; m.Kind == yaml.MappingNode {
			return m
		}
		return nil
	}
	if !create {
		return nil
	}
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	d.root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m}}
	return m
}

// lookup finds the value node for key in a mapping node.
func (d *Document) lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func appendScalar(m *yaml.Node, key, value string) {
	var k, v yaml.Node
	k.SetString(key)
	v.SetString(value)
	m.Content = append(m.Content, &k, &v)
}
