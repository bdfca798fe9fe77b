package schema

import "strings"

// ColumnType is the portable kind of a physical column.
type ColumnType string

const (
	TypeUnknown  ColumnType = "unknown"
	TypeText     ColumnType = "text"
	TypeString   ColumnType = "string"
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeBoolean  ColumnType = "boolean"
	TypeBinary   ColumnType = "binary"
	TypeDate     ColumnType = "date"
	TypeTime     ColumnType = "time"
	TypeDateTime ColumnType = "datetime"
	TypeJSON     ColumnType = "json"
)

// Column describes one physical column as reported by the host framework.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
	// SQLType is the declared database type, if known (e.g. "VARCHAR(255)").
	SQLType string `json:"sql_type,omitempty" yaml:"sql_type,omitempty"`
}

// NewColumn builds a Column from a declared SQL type.
func NewColumn(name, sqlType string) Column {
	return Column{Name: name, Type: ParseColumnType(sqlType), SQLType: sqlType}
}

// IsText reports whether the column can hold a serialized store.
func (c Column) IsText() bool { return c.Type == TypeText }

var sqlTypes = map[string]ColumnType{
	"TEXT":       TypeText,
	"CLOB":       TypeText,
	"TINYTEXT":   TypeText,
	"MEDIUMTEXT": TypeText,
	"LONGTEXT":   TypeText,
	"NTEXT":      TypeText,

	"VARCHAR":           TypeString,
	"CHAR":              TypeString,
	"NCHAR":             TypeString,
	"NVARCHAR":          TypeString,
	"CHARACTER":         TypeString,
	"CHARACTER VARYING": TypeString,
	"VARYING CHARACTER": TypeString,
	"STRING":            TypeString,

	"INT":       TypeInteger,
	"INTEGER":   TypeInteger,
	"TINYINT":   TypeInteger,
	"SMALLINT":  TypeInteger,
	"MEDIUMINT": TypeInteger,
	"BIGINT":    TypeInteger,
	"INT2":      TypeInteger,
	"INT4":      TypeInteger,
	"INT8":      TypeInteger,
	"SERIAL":    TypeInteger,
	"BIGSERIAL": TypeInteger,

	"REAL":             TypeFloat,
	"FLOAT":            TypeFloat,
	"FLOAT4":           TypeFloat,
	"FLOAT8":           TypeFloat,
	"DOUBLE":           TypeFloat,
	"DOUBLE PRECISION": TypeFloat,
	"NUMERIC":          TypeFloat,
	"DECIMAL":          TypeFloat,

	"BOOL":    TypeBoolean,
	"BOOLEAN": TypeBoolean,

	"BLOB":      TypeBinary,
	"BYTEA":     TypeBinary,
	"BINARY":    TypeBinary,
	"VARBINARY": TypeBinary,
	"LONGBLOB":  TypeBinary,

	"DATE":                        TypeDate,
	"TIME":                        TypeTime,
	"TIME WITHOUT TIME ZONE":      TypeTime,
	"DATETIME":                    TypeDateTime,
	"TIMESTAMP":                   TypeDateTime,
	"TIMESTAMPTZ":                 TypeDateTime,
	"TIMESTAMP WITH TIME ZONE":    TypeDateTime,
	"TIMESTAMP WITHOUT TIME ZONE": TypeDateTime,

	"JSON":  TypeJSON,
	"JSONB": TypeJSON,
}

// ParseColumnType maps a declared SQL type to a ColumnType. Length and
// precision modifiers are ignored: "varchar(255)" is TypeString.
func ParseColumnType(sqlType string) ColumnType {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.Join(strings.Fields(t), " ")
	if ct, ok := sqlTypes[t]; ok {
		return ct
	}
	return TypeUnknown
}
