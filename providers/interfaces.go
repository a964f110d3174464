package providers

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/alc6/mig2sqlite/formatter"
)

var (
	ErrNoDatabase        = errors.New("provider requires a database connection")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// SchemaProvider defines the interface for different schema extraction providers
type SchemaProvider interface {
	// Name returns the provider name for identification
	Name() string

	// ExtractSchema extracts the schema using the provider's method
	ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error)

	// IsAvailable checks if this provider can be used in the current environment
	IsAvailable() bool
}

// Dialect names the engine the migrations were applied to.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ExtractParams contains parameters needed for schema extraction
type ExtractParams struct {
	// DB is the database connection the migrations were applied to
	DB *sql.DB

	// Dialect selects the catalog queries used against DB
	Dialect Dialect

	// Format specifies the output format
	Format SchemaFormat

	// Decorate runs on the extracted tables before formatting, typically to
	// attach configured annotations.
	Decorate func([]Table)

	// WriterOptions configure the writers the SQL output is rendered with
	WriterOptions []formatter.WriterOption
}

// SchemaFormat represents the desired output format
type SchemaFormat string

const (
	FormatInfo SchemaFormat = "info" // Human-readable format
	FormatSQL  SchemaFormat = "sql"  // SQLite DDL format
)

// SchemaResult contains the extracted schema in the requested format
type SchemaResult struct {
	// Tables contains parsed table information
	Tables []Table

	// RawSQL contains the SQLite DDL (for sql format)
	RawSQL string

	// Format indicates which format was used
	Format SchemaFormat
}

// ProviderRegistry manages available schema providers
type ProviderRegistry struct {
	providers map[string]SchemaProvider
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]SchemaProvider),
	}
}

// Register adds a provider to the registry
func (r *ProviderRegistry) Register(provider SchemaProvider) {
	r.providers[provider.Name()] = provider
}

// Get retrieves a provider by name
func (r *ProviderRegistry) Get(name string) (SchemaProvider, bool) {
	provider, exists := r.providers[name]
	return provider, exists
}

// ListAvailable returns the names of all available providers, sorted
func (r *ProviderRegistry) ListAvailable() []string {
	var available []string
	for name, provider := range r.providers {
		if provider.IsAvailable() {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}
