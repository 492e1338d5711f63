package graphics

import (
	"regexp"
)

// uniformDecl matches declarations such as "uniform mat4 m_model;" and
// "uniform sampler2D tex[4];"
var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)

// parseUniforms returns the uniform names declared in GLSL source, in
// declaration order and without duplicates
func parseUniforms(sources ...string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, src := range sources {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			name := m[2]
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}
