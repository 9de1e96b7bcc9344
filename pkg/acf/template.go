package acf

import (
	"strconv"
	"strings"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
)

// TemplateShape infers the grid shape of a template block from the largest
// station and slot indices of its geometry lines. A template without
// geometry lines fails with ErrCodeShapeInference.
func TemplateShape(tmpl []string) (grid.Shape, error) {
	var shape grid.Shape
	found := false
	for _, l := range tmpl {
		p, ok := ParseProperty(l)
		if !ok {
			continue
		}
		if i, j, _, ok := p.Path.Geo(); ok {
			found = true
			shape.Stations = max(shape.Stations, i+1)
			shape.Slots = max(shape.Slots, j+1)
		}
	}
	if !found {
		return grid.Shape{}, errors.New(errors.ErrCodeShapeInference, "template has no geometry lines")
	}
	return shape, nil
}

// Template fills a template block with body's values and returns the lines
// in the template's order. The template may name its body by index or by a
// placeholder token such as "_body/b/"; either is rewritten to body.Index.
//
// Geometry lines and the owned scalars in [grid.Body.Scalars] are written
// with the computed values. Any other body line keeps its value and only has
// its body index rewritten. Lines that are not body properties are copied
// unchanged. body.Grid must have the shape returned by [TemplateShape].
func Template(tmpl []string, body *grid.Body) ([]string, error) {
	shape, err := TemplateShape(tmpl)
	if err != nil {
		return nil, err
	}
	if body.Grid.Shape != shape {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"template shape %s does not match grid %s", shape, body.Grid.Shape)
	}

	prefix := "P " + body.Prefix()
	scalars := body.Scalars()
	out := make([]string, 0, len(tmpl))
	for _, l := range tmpl {
		p, ok := ParseProperty(l)
		if !ok {
			out = append(out, l)
			continue
		}
		unit, isBody := p.Path.Unit()
		if !isBody {
			out = append(out, l)
			continue
		}
		if i, j, k, ok := p.Path.Geo(); ok {
			out = append(out, grid.Line{Body: body.Index, I: i, J: j, K: k, Value: body.Grid.Value(i, j, k)}.String())
			continue
		}
		key := p.Path.Key()
		if v, ok := scalars[key]; ok {
			out = append(out, prefix+key+" "+v)
			continue
		}
		out = append(out, retarget(l, unit.String(), body.Index))
	}
	return out, nil
}

// retarget rewrites the first "_body/<from>/" in line to "_body/<to>/".
func retarget(line, from string, to int) string {
	return strings.Replace(line,
		"_body/"+from+"/",
		"_body/"+strconv.Itoa(to)+"/", 1)
}
