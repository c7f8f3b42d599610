package openapi

import (
	"fmt"
	"math"
	"strconv"

	rna "github.com/goliatone/go-rna"
)

// schemaNode is an intermediate JSON schema. Nodes with Ref set stand for a
// struct schema and are resolved to an inline object or a component by the
// document builder.
type schemaNode struct {
	Type        string
	Format      string
	Title       string
	Description string
	Ref         string

	Properties map[string]*schemaNode
	order      []string
	Required   []string
	Items      *schemaNode

	Enum        []any
	Default     any
	Minimum     *float64
	Maximum     *float64
	MinItems    *int
	MaxItems    *int
	MaxLength   *int
	UniqueItems bool
	ReadOnly    bool
	Nullable    bool

	formgen           map[string]string
	relationships     map[string]string
	additionalMapping map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Title != "" {
		result["title"] = n.Title
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Minimum != nil {
		result["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		result["maximum"] = *n.Maximum
	}
	if n.MinItems != nil {
		result["minItems"] = *n.MinItems
	}
	if n.MaxItems != nil {
		result["maxItems"] = *n.MaxItems
	}
	if n.MaxLength != nil {
		result["maxLength"] = *n.MaxLength
	}
	if n.UniqueItems {
		result["uniqueItems"] = true
	}
	if n.ReadOnly {
		result["readOnly"] = true
	}
	if n.Nullable {
		result["nullable"] = true
	}
	return result
}

func (n *schemaNode) setFormgen(key, value string) {
	if value == "" {
		return
	}
	if n.formgen == nil {
		n.formgen = map[string]string{}
	}
	n.formgen[key] = value
}

func (n *schemaNode) setExtension(key string, value any) {
	if n.additionalMapping == nil {
		n.additionalMapping = map[string]any{}
	}
	n.additionalMapping[key] = value
}

// schemaGraph collects one object node per struct reachable from the
// described roots and counts how often nested structs are referenced.
type schemaGraph struct {
	config  generatorConfig
	structs map[string]*schemaNode
	uses    map[string]int
}

func newSchemaGraph(config generatorConfig) *schemaGraph {
	return &schemaGraph{
		config:  config,
		structs: map[string]*schemaNode{},
		uses:    map[string]int{},
	}
}

func (g *schemaGraph) addStruct(s *rna.StructDescriptor) (*schemaNode, error) {
	if s == nil {
		return nil, fmt.Errorf("openapi: struct cannot be nil")
	}
	if node, ok := g.structs[s.Identifier]; ok {
		return node, nil
	}

	node := newObjectNode()
	node.Title = g.structTitle(s)
	node.Description = g.structDescription(s)
	node.setExtension("x-rna-struct", s.Identifier)
	if s.Base != nil {
		node.setExtension("x-rna-base", s.Base.Identifier)
	}
	// registered before the walk so self references terminate
	g.structs[s.Identifier] = node

	position := 0
	for prop := range s.AllProperties() {
		if prop.Flag&rna.PropRegister != 0 {
			continue
		}
		if prop.Flag&rna.PropHidden != 0 && !g.config.includeHidden {
			continue
		}
		child, err := g.propertyNode(prop)
		if err != nil {
			return nil, fmt.Errorf("openapi: %s.%s: %w", s.Identifier, prop.Identifier, err)
		}
		child.setFormgen("order", strconv.Itoa(position))
		position++

		node.Properties[prop.Identifier] = child
		node.order = append(node.order, prop.Identifier)
		if prop.Type == rna.TypePointer && prop.Flag&rna.PropNeverNull != 0 {
			node.Required = append(node.Required, prop.Identifier)
		}
	}
	return node, nil
}

func (g *schemaGraph) propertyNode(prop *rna.PropertyDescriptor) (*schemaNode, error) {
	var node *schemaNode
	switch prop.Type {
	case rna.TypeBoolean:
		node = g.valueNode(prop, &schemaNode{Type: "boolean"}, boolDefaults(prop))
	case rna.TypeInt:
		leaf := &schemaNode{Type: "integer", Format: "int32"}
		if s := prop.Int; !(s.HardMin == 0 && s.HardMax == 0) {
			if s.HardMin != math.MinInt32 {
				leaf.Minimum = float64Ptr(float64(s.HardMin))
			}
			if s.HardMax != math.MaxInt32 {
				leaf.Maximum = float64Ptr(float64(s.HardMax))
			}
		}
		node = g.valueNode(prop, leaf, intDefaults(prop))
	case rna.TypeFloat:
		leaf := &schemaNode{Type: "number", Format: "float"}
		if s := prop.Float; !(s.HardMin == 0 && s.HardMax == 0) {
			if s.HardMin != -math.MaxFloat32 {
				leaf.Minimum = float64Ptr(widen(s.HardMin))
			}
			if s.HardMax != math.MaxFloat32 {
				leaf.Maximum = float64Ptr(widen(s.HardMax))
			}
		}
		if prop.Float.Precision > 0 {
			leaf.setFormgen("precision", strconv.Itoa(prop.Float.Precision))
		}
		node = g.valueNode(prop, leaf, floatDefaults(prop))
	case rna.TypeString:
		node = &schemaNode{Type: "string"}
		if prop.String.MaxLength > 0 {
			limit := prop.String.MaxLength
			node.MaxLength = &limit
		}
		if prop.String.Default != "" {
			node.Default = prop.String.Default
		}
	case rna.TypeEnum:
		node = g.enumNode(prop)
	case rna.TypePointer:
		var err error
		node, err = g.referenceNode(prop.Pointer.Type)
		if err != nil {
			return nil, err
		}
		if node.Ref == "" && prop.Flag&rna.PropNeverNull == 0 {
			node.Nullable = true
		}
	case rna.TypeCollection:
		items, err := g.referenceNode(prop.Collection.Type)
		if err != nil {
			return nil, err
		}
		node = &schemaNode{Type: "array", Items: items}
	default:
		return nil, fmt.Errorf("unsupported property type %s", prop.Type)
	}

	node.Title = g.propertyTitle(prop)
	node.Description = g.propertyDescription(prop)
	if prop.Flag&rna.PropEditable == 0 && prop.EditableFunc == nil {
		node.ReadOnly = true
	}
	if widget := subtypeWidgets[prop.Subtype]; widget != "" {
		node.setFormgen("widget", widget)
	}
	if format := subtypeFormats[prop.Subtype]; format != "" && node.Type == "string" {
		node.Format = format
	}
	node.setExtension("x-rna-type", prop.Type.String())
	if prop.Flag&rna.PropIDProperty != 0 {
		node.setExtension("x-rna-idproperty", true)
	}
	if prop.Flag&rna.PropAnimatable != 0 {
		node.setExtension("x-rna-animatable", true)
	}
	return node, nil
}

// valueNode wraps leaf in one array level per dimension and attaches the
// defaults to the outermost node.
func (g *schemaGraph) valueNode(prop *rna.PropertyDescriptor, leaf *schemaNode, defaults []any) *schemaNode {
	if !prop.IsArray() {
		if len(defaults) > 0 {
			leaf.Default = defaults[0]
		}
		return leaf
	}
	if prop.DynamicLength != nil {
		return &schemaNode{Type: "array", Items: leaf}
	}

	node := leaf
	for i := len(prop.ArrayLength) - 1; i >= 0; i-- {
		length := prop.ArrayLength[i]
		node = &schemaNode{Type: "array", Items: node, MinItems: &length, MaxItems: &length}
	}
	if len(defaults) > 0 {
		node.Default = reshape(defaults, prop.ArrayLength)
	}
	return node
}

func (g *schemaGraph) enumNode(prop *rna.PropertyDescriptor) *schemaNode {
	items := prop.Enum.Items
	identifiers := make([]any, 0, items.Len())
	for _, item := range items.Items() {
		if item.Identifier == "" {
			continue
		}
		identifiers = append(identifiers, item.Identifier)
	}

	leaf := &schemaNode{Type: "string", Enum: identifiers}
	if items == nil && prop.Enum.ItemsFunc != nil {
		leaf.setExtension("x-rna-dynamic-items", true)
	}

	if prop.Flag&rna.PropEnumFlag != 0 {
		node := &schemaNode{Type: "array", Items: leaf, UniqueItems: true}
		if set := items.BitflagIdentifiers(prop.Enum.Default); len(set) > 0 {
			defaults := make([]any, len(set))
			for i, identifier := range set {
				defaults[i] = identifier
			}
			node.Default = defaults
		}
		return node
	}
	if identifier, ok := items.Identifier(prop.Enum.Default); ok {
		leaf.Default = identifier
	}
	return leaf
}

// referenceNode describes a pointer or collection item type. Data blocks
// are referenced by name; other structs are nested.
func (g *schemaGraph) referenceNode(target *rna.StructDescriptor) (*schemaNode, error) {
	switch {
	case target == nil:
		node := &schemaNode{Type: "string"}
		node.relationships = map[string]string{"kind": "reference"}
		return node, nil
	case target.IsID():
		node := &schemaNode{Type: "string"}
		node.relationships = map[string]string{"kind": "id", "struct": target.Identifier}
		return node, nil
	}
	if _, err := g.addStruct(target); err != nil {
		return nil, err
	}
	g.uses[target.Identifier]++
	return &schemaNode{Ref: target.Identifier}, nil
}

func (g *schemaGraph) structTitle(s *rna.StructDescriptor) string {
	if g.config.registry != nil {
		return g.config.registry.StructUIName(s)
	}
	return s.Name
}

func (g *schemaGraph) structDescription(s *rna.StructDescriptor) string {
	if g.config.registry != nil {
		return g.config.registry.StructUIDescription(s)
	}
	return s.Description
}

func (g *schemaGraph) propertyTitle(prop *rna.PropertyDescriptor) string {
	if g.config.registry != nil {
		return g.config.registry.PropertyUIName(rna.StaticRef(prop))
	}
	if prop.Name == "" {
		return prop.Identifier
	}
	return prop.Name
}

func (g *schemaGraph) propertyDescription(prop *rna.PropertyDescriptor) string {
	if g.config.registry != nil {
		return g.config.registry.PropertyUIDescription(rna.StaticRef(prop))
	}
	return prop.Description
}

var subtypeWidgets = map[rna.PropertySubType]string{
	rna.SubtypeFilePath:   "file",
	rna.SubtypeFileName:   "file",
	rna.SubtypeDirPath:    "directory",
	rna.SubtypePassword:   "password",
	rna.SubtypePercentage: "percentage",
	rna.SubtypeFactor:     "slider",
	rna.SubtypeAngle:      "angle",
	rna.SubtypeColor:      "color",
	rna.SubtypeColorGamma: "color",
}

var subtypeFormats = map[rna.PropertySubType]string{
	rna.SubtypePassword:   "password",
	rna.SubtypeByteString: "byte",
}

func boolDefaults(prop *rna.PropertyDescriptor) []any {
	n := flatLength(prop)
	out := make([]any, n)
	for i := range out {
		if i < len(prop.Bool.DefaultArray) {
			out[i] = prop.Bool.DefaultArray[i]
		} else {
			out[i] = prop.Bool.Default
		}
	}
	return out
}

func intDefaults(prop *rna.PropertyDescriptor) []any {
	n := flatLength(prop)
	out := make([]any, n)
	for i := range out {
		if i < len(prop.Int.DefaultArray) {
			out[i] = prop.Int.DefaultArray[i]
		} else {
			out[i] = prop.Int.Default
		}
	}
	return out
}

func floatDefaults(prop *rna.PropertyDescriptor) []any {
	n := flatLength(prop)
	out := make([]any, n)
	for i := range out {
		if i < len(prop.Float.DefaultArray) {
			out[i] = widen(prop.Float.DefaultArray[i])
		} else {
			out[i] = widen(prop.Float.Default)
		}
	}
	return out
}

func flatLength(prop *rna.PropertyDescriptor) int {
	if len(prop.ArrayLength) == 0 {
		return 1
	}
	total := 1
	for _, n := range prop.ArrayLength {
		total *= n
	}
	return total
}

func reshape(flat []any, dims []int) []any {
	if len(dims) <= 1 {
		return flat
	}
	step := len(flat) / dims[0]
	out := make([]any, dims[0])
	for i := range out {
		out[i] = reshape(flat[i*step:(i+1)*step], dims[1:])
	}
	return out
}

// widen converts f to the float64 with the shortest decimal form of f, so
// 0.1 stays 0.1 in the document.
func widen(f float32) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return out
}

func float64Ptr(v float64) *float64 {
	return &v
}
