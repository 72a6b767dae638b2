// Package recording stores verification results in SQLite files. Tables are
// derived from flat structs: field names become columns and inserts are
// buffered and committed in batches.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder persists rows of flat structs into a SQLite database.
type Recorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry.
	CreateTable(name string, sampleEntry any)

	// Insert buffers one entry for a table created earlier.
	Insert(name string, entry any)

	// Tables lists the created table names.
	Tables() []string

	// Flush commits all buffered entries.
	Flush()
}

const batchSize = 100000

type bufferedTable struct {
	entryType reflect.Type
	pending   []any
}

type sqliteRecorder struct {
	db     *sql.DB
	tables map[string]*bufferedTable

	buffered int
}

// NewRecorder creates a Recorder writing to path+".sqlite3". An empty path
// picks a unique run name. The file must not already exist. Buffered rows
// are flushed at process exit.
func NewRecorder(path string) Recorder {
	if path == "" {
		path = "opencache_run_" + xid.New().String()
	}
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("recording file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Recording to %s\n", filename)

	return wrapDB(db)
}

// NewRecorderWithDB creates a Recorder on an existing database handle.
func NewRecorderWithDB(db *sql.DB) Recorder {
	return wrapDB(db)
}

func wrapDB(db *sql.DB) Recorder {
	r := &sqliteRecorder{
		db:     db,
		tables: make(map[string]*bufferedTable),
	}

	atexit.Register(r.Flush)

	return r
}

func (r *sqliteRecorder) CreateTable(name string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	mustBeFlatStruct(t)

	columns := strings.Join(structs.Names(sampleEntry), ",\n\t")
	r.mustExec("CREATE TABLE " + name + " (\n\t" + columns + "\n);")

	r.tables[name] = &bufferedTable{entryType: t}
}

func (r *sqliteRecorder) Insert(name string, entry any) {
	t, ok := r.tables[name]
	if !ok {
		panic(fmt.Errorf("recording table %s was never created", name))
	}
	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Errorf("recording table %s expects %s entries",
			name, t.entryType))
	}

	t.pending = append(t.pending, entry)
	r.buffered++

	if r.buffered >= batchSize {
		r.Flush()
	}
}

func (r *sqliteRecorder) Tables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *sqliteRecorder) Flush() {
	if r.buffered == 0 {
		return
	}

	r.mustExec("BEGIN TRANSACTION")
	defer r.mustExec("COMMIT TRANSACTION")

	for name, t := range r.tables {
		if len(t.pending) == 0 {
			continue
		}

		stmt := r.prepareInsert(name, t)
		for _, entry := range t.pending {
			v := reflect.ValueOf(entry)
			args := make([]any, v.NumField())
			for i := range args {
				args[i] = v.Field(i).Interface()
			}

			if _, err := stmt.Exec(args...); err != nil {
				panic(err)
			}
		}
		stmt.Close()

		t.pending = nil
	}

	r.buffered = 0
}

func (r *sqliteRecorder) prepareInsert(
	name string,
	t *bufferedTable,
) *sql.Stmt {
	placeholders := make([]string, t.entryType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := r.db.Prepare("INSERT INTO " + name + " VALUES (" +
		strings.Join(placeholders, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *sqliteRecorder) mustExec(query string) {
	if _, err := r.db.Exec(query); err != nil {
		panic(fmt.Errorf("recording query failed: %s: %w", query, err))
	}
}

func mustBeFlatStruct(t reflect.Type) {
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("recording entries must be structs, got %s", t))
	}

	for i := 0; i < t.NumField(); i++ {
		switch t.Field(i).Type.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
			continue
		default:
			panic(fmt.Errorf("recording field %s has unsupported type %s",
				t.Field(i).Name, t.Field(i).Type))
		}
	}
}
