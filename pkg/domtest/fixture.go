package domtest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-loom/loom/pkg/dom"
)

type fixtureNode struct {
	Tag      string         `yaml:"tag"`
	Props    map[string]any `yaml:"props"`
	Children []fixtureNode  `yaml:"children"`
}

// ParseFixture builds a detached node tree from a YAML document of the form:
//
//	tag: div
//	props:
//	  id: root
//	children:
//	  - tag: span
//	    props:
//	      text: hello
//
// Every node must carry a non-empty tag. The returned tree is not attached
// to the document; append it under Root to connect it.
func (d *Document) ParseFixture(data []byte) (dom.Node, error) {
	var root fixtureNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return d.buildFixture(root)
}

// LoadFixture reads a YAML fixture file and builds its node tree.
func (d *Document) LoadFixture(path string) (dom.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	node, err := d.ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return node, nil
}

func (d *Document) buildFixture(fx fixtureNode) (*Node, error) {
	if fx.Tag == "" {
		return nil, fmt.Errorf("parse fixture: node with empty tag")
	}
	n := d.CreateElement(fx.Tag).(*Node)
	for name, value := range fx.Props {
		n.SetProperty(name, value)
	}
	for _, childFx := range fx.Children {
		child, err := d.buildFixture(childFx)
		if err != nil {
			return nil, err
		}
		child.parent = n
		n.children = append(n.children, child)
	}
	return n, nil
}
