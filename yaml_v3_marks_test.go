package yawn

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// TestYamlV3NodeMarks pins the node positions reported by gopkg.in/yaml.v3
// that span location depends on.
func TestYamlV3NodeMarks(t *testing.T) {
	input := `service:
  enabled:
  routes:
    - host: app.example.com
      paths:
        -
script: |
  echo
`
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	root := doc.Content[0]
	if root.Line != 1 || root.Column != 1 {
		t.Errorf("block mapping should start at its first key, got %d:%d", root.Line, root.Column)
	}

	service := root.Content[1]
	if service.Line != 2 || service.Column != 3 {
		t.Errorf("nested mapping should start at its first key, got %d:%d", service.Line, service.Column)
	}

	enabled := service.Content[1]
	if enabled.ShortTag() != "!!null" || enabled.Line != 2 || enabled.Column != 11 {
		t.Errorf("implicit null should sit right after ':', got %s at %d:%d", enabled.ShortTag(), enabled.Line, enabled.Column)
	}

	routes := service.Content[3]
	if routes.Kind != yaml.SequenceNode || routes.Line != 4 || routes.Column != 5 {
		t.Errorf("block sequence should start at its first '-', got %d:%d", routes.Line, routes.Column)
	}

	paths := routes.Content[0].Content[3]
	if paths.Kind != yaml.SequenceNode || len(paths.Content) != 1 {
		t.Fatalf("paths should be a one element list, got kind %d", paths.Kind)
	}
	if el := paths.Content[0]; el.Line != 6 || el.Column != 10 {
		t.Errorf("implicit null element should sit right after '-', got %d:%d", el.Line, el.Column)
	}

	script := root.Content[3]
	if script.Style != yaml.LiteralStyle || script.Line != 7 || script.Column != 9 {
		t.Errorf("literal scalar should start at its indicator, got style %d at %d:%d", script.Style, script.Line, script.Column)
	}
}
