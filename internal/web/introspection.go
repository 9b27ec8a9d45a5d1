package web

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/Laisky/errors/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const defaultDeprecationReason = "No longer supported"

// introspectedType is a named schema type, or a LIST / NON_NULL wrapper around one.
type introspectedType struct {
	def    *ast.Definition
	kind   string
	ofType *introspectedType
}

func namedType(def *ast.Definition) *introspectedType {
	if def == nil {
		return nil
	}

	return &introspectedType{def: def, kind: string(def.Kind)}
}

func wrapType(t *ast.Type) *introspectedType {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return &introspectedType{kind: "NON_NULL", ofType: wrapType(&inner)}
	}
	if t.Elem != nil {
		return &introspectedType{kind: "LIST", ofType: wrapType(t.Elem)}
	}

	return namedType(parsedSchema.Types[t.NamedType])
}

// inputValue is an argument or an input object field.
type inputValue struct {
	name, description string
	typ               *ast.Type
	defaultValue      *ast.Value
	directives        ast.DirectiveList
}

func argumentValues(args ast.ArgumentDefinitionList) []inputValue {
	out := make([]inputValue, 0, len(args))
	for _, a := range args {
		out = append(out, inputValue{
			name:         a.Name,
			description:  a.Description,
			typ:          a.Type,
			defaultValue: a.DefaultValue,
			directives:   a.Directives,
		})
	}

	return out
}

func deprecation(dirs ast.DirectiveList) (deprecated bool, reason *string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, nil
	}

	r := defaultDeprecationReason
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		r = arg.Value.Raw
	}

	return true, &r
}

func (ec *executionContext) includeDeprecated(field graphql.CollectedField) bool {
	v, _ := field.ArgumentMap(ec.Variables)["includeDeprecated"].(bool)
	return v
}

func (ec *executionContext) introspectionAllowed(ctx context.Context, path ast.Path) bool {
	if ec.DisableIntrospection {
		ec.fieldError(ctx, path, errors.New("introspection disabled"))
		return false
	}

	return true
}

func (ec *executionContext) introspectTypeByName(ctx context.Context,
	field graphql.CollectedField, path ast.Path,
) (graphql.Marshaler, bool) {
	if !ec.introspectionAllowed(ctx, path) {
		return graphql.Null, true
	}

	name, _ := field.ArgumentMap(ec.Variables)["name"].(string)
	return ec.introspectType(field.Selections, path, namedType(parsedSchema.Types[name]))
}

func (ec *executionContext) introspectSchema(ctx context.Context,
	field graphql.CollectedField, path ast.Path,
) (graphql.Marshaler, bool) {
	if !ec.introspectionAllowed(ctx, path) {
		return nil, false
	}

	s := parsedSchema
	return ec.object(field.Selections, "__Schema", path, func(f graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch f.Name {
		case "types":
			names := slices.Sorted(maps.Keys(s.Types))
			list := make(graphql.Array, 0, len(names))
			for i, name := range names {
				v, ok := ec.introspectType(f.Selections, childPath(p, ast.PathIndex(i)), namedType(s.Types[name]))
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		case "queryType":
			return ec.introspectType(f.Selections, p, namedType(s.Query))
		case "mutationType":
			return ec.introspectType(f.Selections, p, namedType(s.Mutation))
		case "subscriptionType":
			return ec.introspectType(f.Selections, p, namedType(s.Subscription))
		case "directives":
			names := slices.Sorted(maps.Keys(s.Directives))
			list := make(graphql.Array, 0, len(names))
			for i, name := range names {
				v, ok := ec.introspectDirective(f.Selections, childPath(p, ast.PathIndex(i)), s.Directives[name])
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		default:
			// description
			return graphql.Null, true
		}
	})
}

func (ec *executionContext) introspectType(sel ast.SelectionSet, path ast.Path, t *introspectedType) (graphql.Marshaler, bool) {
	if t == nil {
		return graphql.Null, true
	}

	return ec.object(sel, "__Type", path, func(f graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		def := t.def
		switch f.Name {
		case "kind":
			return graphql.MarshalString(t.kind), true
		case "ofType":
			return ec.introspectType(f.Selections, p, t.ofType)
		}

		if def == nil {
			// wrappers carry nothing else
			return graphql.Null, true
		}

		switch f.Name {
		case "name":
			return nullableString(def.Name), true
		case "description":
			return nullableString(def.Description), true
		case "isOneOf":
			return graphql.MarshalBoolean(def.Directives.ForName("oneOf") != nil), true
		case "fields":
			if def.Kind != ast.Object && def.Kind != ast.Interface {
				return graphql.Null, true
			}

			withDeprecated := ec.includeDeprecated(f)
			list := graphql.Array{}
			for _, fd := range def.Fields {
				if strings.HasPrefix(fd.Name, "__") {
					continue
				}
				if deprecated, _ := deprecation(fd.Directives); deprecated && !withDeprecated {
					continue
				}

				v, ok := ec.introspectField(f.Selections, childPath(p, ast.PathIndex(len(list))), fd)
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		case "inputFields":
			if def.Kind != ast.InputObject {
				return graphql.Null, true
			}

			list := make(graphql.Array, 0, len(def.Fields))
			for i, fd := range def.Fields {
				v, ok := ec.introspectInputValue(f.Selections, childPath(p, ast.PathIndex(i)), inputValue{
					name:         fd.Name,
					description:  fd.Description,
					typ:          fd.Type,
					defaultValue: fd.DefaultValue,
					directives:   fd.Directives,
				})
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		case "interfaces":
			if def.Kind != ast.Object && def.Kind != ast.Interface {
				return graphql.Null, true
			}

			defs := make([]*ast.Definition, 0, len(def.Interfaces))
			for _, name := range def.Interfaces {
				defs = append(defs, parsedSchema.Types[name])
			}
			return ec.introspectTypes(f.Selections, p, defs)
		case "possibleTypes":
			if def.Kind != ast.Interface && def.Kind != ast.Union {
				return graphql.Null, true
			}

			return ec.introspectTypes(f.Selections, p, parsedSchema.GetPossibleTypes(def))
		case "enumValues":
			if def.Kind != ast.Enum {
				return graphql.Null, true
			}

			withDeprecated := ec.includeDeprecated(f)
			list := graphql.Array{}
			for _, ev := range def.EnumValues {
				deprecated, reason := deprecation(ev.Directives)
				if deprecated && !withDeprecated {
					continue
				}

				v, ok := ec.object(f.Selections, "__EnumValue", childPath(p, ast.PathIndex(len(list))),
					func(vf graphql.CollectedField, _ ast.Path) (graphql.Marshaler, bool) {
						switch vf.Name {
						case "name":
							return graphql.MarshalString(ev.Name), true
						case "description":
							return nullableString(ev.Description), true
						case "isDeprecated":
							return graphql.MarshalBoolean(deprecated), true
						default:
							return optionalString(reason), true
						}
					})
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		default:
			// specifiedByURL
			return graphql.Null, true
		}
	})
}

func (ec *executionContext) introspectTypes(sel ast.SelectionSet, path ast.Path, defs []*ast.Definition) (graphql.Marshaler, bool) {
	list := make(graphql.Array, 0, len(defs))
	for i, def := range defs {
		v, ok := ec.introspectType(sel, childPath(path, ast.PathIndex(i)), namedType(def))
		if !ok {
			return nil, false
		}
		list = append(list, v)
	}

	return list, true
}

func (ec *executionContext) introspectField(sel ast.SelectionSet, path ast.Path, fd *ast.FieldDefinition) (graphql.Marshaler, bool) {
	deprecated, reason := deprecation(fd.Directives)
	return ec.object(sel, "__Field", path, func(f graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch f.Name {
		case "name":
			return graphql.MarshalString(fd.Name), true
		case "description":
			return nullableString(fd.Description), true
		case "args":
			return ec.introspectInputValues(f, p, argumentValues(fd.Arguments))
		case "type":
			return ec.introspectType(f.Selections, p, wrapType(fd.Type))
		case "isDeprecated":
			return graphql.MarshalBoolean(deprecated), true
		default:
			return optionalString(reason), true
		}
	})
}

func (ec *executionContext) introspectInputValues(field graphql.CollectedField, path ast.Path, values []inputValue) (graphql.Marshaler, bool) {
	withDeprecated := ec.includeDeprecated(field)
	list := graphql.Array{}
	for _, iv := range values {
		if deprecated, _ := deprecation(iv.directives); deprecated && !withDeprecated {
			continue
		}

		v, ok := ec.introspectInputValue(field.Selections, childPath(path, ast.PathIndex(len(list))), iv)
		if !ok {
			return nil, false
		}
		list = append(list, v)
	}

	return list, true
}

func (ec *executionContext) introspectInputValue(sel ast.SelectionSet, path ast.Path, iv inputValue) (graphql.Marshaler, bool) {
	deprecated, reason := deprecation(iv.directives)
	return ec.object(sel, "__InputValue", path, func(f graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch f.Name {
		case "name":
			return graphql.MarshalString(iv.name), true
		case "description":
			return nullableString(iv.description), true
		case "type":
			return ec.introspectType(f.Selections, p, wrapType(iv.typ))
		case "defaultValue":
			if iv.defaultValue == nil {
				return graphql.Null, true
			}
			return graphql.MarshalString(iv.defaultValue.String()), true
		case "isDeprecated":
			return graphql.MarshalBoolean(deprecated), true
		default:
			return optionalString(reason), true
		}
	})
}

func (ec *executionContext) introspectDirective(sel ast.SelectionSet, path ast.Path, d *ast.DirectiveDefinition) (graphql.Marshaler, bool) {
	return ec.object(sel, "__Directive", path, func(f graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch f.Name {
		case "name":
			return graphql.MarshalString(d.Name), true
		case "description":
			return nullableString(d.Description), true
		case "locations":
			list := make(graphql.Array, 0, len(d.Locations))
			for _, loc := range d.Locations {
				list = append(list, graphql.MarshalString(string(loc)))
			}
			return list, true
		case "args":
			return ec.introspectInputValues(f, p, argumentValues(d.Arguments))
		case "isRepeatable":
			return graphql.MarshalBoolean(d.IsRepeatable), true
		default:
			unknownField("__Directive", f.Name)
			return nil, false
		}
	})
}
