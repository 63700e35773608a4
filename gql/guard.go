package gql

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/jrsteele09/go-notes-server/internal/config"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
)

// maxAliases is how many times a field name may appear among its siblings.
const maxAliases = 1

var rootTypes = map[string]bool{"Query": true, "Mutation": true, "Subscription": true}

// Limits bound the shape of a document before it is executed.
type Limits struct {
	MaxSize        int
	MaxDefinitions int
	MaxDepth       int
	MaxFields      int
	Introspection  bool
}

func DefaultLimits() Limits {
	return Limits{MaxSize: 2048, MaxDefinitions: 10, MaxDepth: 10, MaxFields: 2, Introspection: true}
}

func LimitsFromConfig(c config.GQLConfig) Limits {
	return Limits{
		MaxSize:        c.GetGQLMaxSize(),
		MaxDefinitions: c.GetGQLMaxDefinitions(),
		MaxDepth:       c.GetGQLMaxDepth(),
		MaxFields:      c.GetGQLMaxFields(),
		Introspection:  c.GetGQLIntrospection(),
	}
}

// Guard rejects documents that are too large or too deep to execute.
// It never looks at the caller.
type Guard struct {
	limits Limits
}

func NewGuard(limits Limits) *Guard {
	return &Guard{limits: limits}
}

// Check returns a non-field validation error for the first limit doc breaks.
// Inline fragments and fragment spreads count as if their fields were
// written in place.
func (g *Guard) Check(doc *ast.Document) error {
	if len(doc.Definitions) > g.limits.MaxDefinitions {
		return guardError("Only %d definitions are allowed per query.", g.limits.MaxDefinitions)
	}

	w := &walker{fragments: make(map[string]*ast.FragmentDefinition)}
	for _, definition := range doc.Definitions {
		if fragment, ok := definition.(*ast.FragmentDefinition); ok && fragment.Name != nil {
			w.fragments[fragment.Name.Value] = fragment
		}
	}

	for _, definition := range doc.Definitions {
		selections, typeCondition := definitionSelections(definition)
		if selections == nil {
			continue
		}
		if w.depth(selections, 1) > g.limits.MaxDepth {
			return guardError("Query depth allowed is %d.", g.limits.MaxDepth)
		}
		if w.aliases(selections) > maxAliases {
			return guardError("Only %d alias is allowed per field.", maxAliases)
		}
		fields, err := g.rootFields(w.fields(selections), typeCondition)
		if err != nil {
			return err
		}
		if fields > g.limits.MaxFields {
			return guardError("Only %d fields are allowed at query level.", g.limits.MaxFields)
		}
	}
	return nil
}

func definitionSelections(definition ast.Node) (*ast.SelectionSet, string) {
	switch d := definition.(type) {
	case *ast.OperationDefinition:
		return d.SelectionSet, ""
	case *ast.FragmentDefinition:
		if d.TypeCondition != nil && d.TypeCondition.Name != nil {
			return d.SelectionSet, d.TypeCondition.Name.Value
		}
		return d.SelectionSet, ""
	}
	return nil, ""
}

// walker expands fragments while measuring a document.
type walker struct {
	fragments map[string]*ast.FragmentDefinition
}

// fields returns the fields of set with inline fragments and spreads
// flattened in. A spread of an unknown fragment, or one already being
// expanded, contributes nothing.
func (w *walker) fields(set *ast.SelectionSet) []*ast.Field {
	return w.expand(set, map[string]bool{})
}

func (w *walker) expand(set *ast.SelectionSet, expanding map[string]bool) []*ast.Field {
	if set == nil {
		return nil
	}
	var fields []*ast.Field
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			fields = append(fields, sel)
		case *ast.InlineFragment:
			fields = append(fields, w.expand(sel.SelectionSet, expanding)...)
		case *ast.FragmentSpread:
			if sel.Name == nil {
				continue
			}
			name := sel.Name.Value
			fragment, ok := w.fragments[name]
			if !ok || expanding[name] {
				continue
			}
			expanding[name] = true
			fields = append(fields, w.expand(fragment.SelectionSet, expanding)...)
			delete(expanding, name)
		}
	}
	return fields
}

// depth walks nested fields, the top level being depth 1.
func (w *walker) depth(set *ast.SelectionSet, depth int) int {
	deepest := depth
	for _, field := range w.fields(set) {
		if field.SelectionSet == nil {
			continue
		}
		deepest = max(deepest, w.depth(field.SelectionSet, depth+1))
	}
	return deepest
}

// aliases returns the highest number of times one field name appears
// within a single selection set.
func (w *walker) aliases(set *ast.SelectionSet) int {
	fields := w.fields(set)
	counts := make(map[string]int)
	highest := 0
	for _, name := range fieldNames(fields) {
		counts[name]++
		highest = max(highest, counts[name])
	}
	for _, field := range fields {
		if field.SelectionSet != nil {
			highest = max(highest, w.aliases(field.SelectionSet))
		}
	}
	return highest
}

// rootFields counts the fields requested at the root of an operation, or of
// a fragment on a root type.
func (g *Guard) rootFields(fields []*ast.Field, typeCondition string) (int, error) {
	if typeCondition != "" && !rootTypes[typeCondition] {
		return 0, nil
	}
	names := fieldNames(fields)
	if !g.limits.Introspection {
		for _, name := range names {
			if name == "__schema" || name == "__type" {
				return 0, guardError("%s introspection is not allowed.", name)
			}
		}
	}
	return len(names), nil
}

func fieldNames(fields []*ast.Field) []string {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Name != nil {
			names = append(names, field.Name.Value)
		}
	}
	return names
}

func guardError(format string, args ...any) error {
	return apperrors.NewValidationError("", fmt.Sprintf(format, args...))
}
