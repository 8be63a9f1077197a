package condition

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

var ErrUnknownDialect = errors.New("unknown sql dialect")

// ParseDialect maps a database/sql driver name to its dialect
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "postgres", "postgresql", "pq":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownDialect, driver)
}

// QuoteIdent quotes an output alias for the dialect
func (d Dialect) QuoteIdent(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d Dialect) likeKeyword() string {
	if d == MySQL {
		return "LIKE"
	}
	return "ILIKE"
}

// Rule is a single column predicate
type Rule struct {
	Field    string
	Operator string
	Value    interface{}
}

// Compiler renders rules into SQL fragments and collects their bind arguments.
// One Compiler belongs to one statement; placeholders are numbered across all rules.
type Compiler struct {
	Dialect Dialect
	Args    []interface{}
}

func NewCompiler(dialect Dialect) *Compiler {
	if dialect == "" {
		dialect = Postgres
	}
	return &Compiler{Dialect: dialect}
}

// Bind records v as an argument and returns its placeholder
func (c *Compiler) Bind(v interface{}) string {
	c.Args = append(c.Args, v)
	if c.Dialect == MySQL {
		return "?"
	}
	return "$" + strconv.Itoa(len(c.Args))
}

// Compile joins the rules with AND. Rules whose value is empty are skipped.
func (c *Compiler) Compile(rules []Rule) (string, error) {
	var conditions []string
	for _, rule := range rules {
		if IsEmpty(rule.Value) {
			continue
		}
		cond, err := c.compileRule(rule)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, cond)
	}
	return strings.Join(conditions, " AND "), nil
}

func (c *Compiler) compileRule(rule Rule) (string, error) {
	field := rule.Field
	val := rule.Value

	switch rule.Operator {
	case "equals":
		return field + " = " + c.Bind(val), nil
	case "greater_than":
		return field + " > " + c.Bind(val), nil
	case "less_than":
		return field + " < " + c.Bind(val), nil
	case "contains", "starts_with", "ends_with":
		strVal, ok := val.(string)
		if !ok {
			return "", fmt.Errorf("%s operator requires string value", rule.Operator)
		}
		pattern := EscapeLike(strVal)
		switch rule.Operator {
		case "contains":
			pattern = "%" + pattern + "%"
		case "starts_with":
			pattern = pattern + "%"
		case "ends_with":
			pattern = "%" + pattern
		}
		return field + " " + c.Dialect.likeKeyword() + " " + c.Bind(pattern), nil
	case "between":
		bounds, ok := ToSlice(val)
		if !ok || len(bounds) != 2 {
			return "", fmt.Errorf("between operator requires exactly two bounds")
		}
		return field + " BETWEEN " + c.Bind(bounds[0]) + " AND " + c.Bind(bounds[1]), nil
	case "in", "not_in":
		items, ok := ToSlice(val)
		if !ok {
			items = []interface{}{val}
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = c.Bind(item)
		}
		keyword := " IN ("
		if rule.Operator == "not_in" {
			keyword = " NOT IN ("
		}
		return field + keyword + strings.Join(placeholders, ", ") + ")", nil
	default:
		return "", fmt.Errorf("unknown operator: %s", rule.Operator)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralises LIKE wildcards in user text
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ToSlice converts any slice or array value into []interface{}
func ToSlice(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	// []byte is a scalar here
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// IsEmpty reports whether a filter value means "not applied": nil, blank text,
// or a list whose elements are all empty.
func IsEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	if items, ok := ToSlice(v); ok {
		for _, item := range items {
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	}
	return false
}
