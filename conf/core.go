package conf

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/zeptools/docoverlay/db/kvdb"
	"github.com/zeptools/docoverlay/db/kvdb/impls/redis"
	"github.com/zeptools/docoverlay/db/sqldb"
	"github.com/zeptools/docoverlay/db/sqldb/impls/mysql"
	"github.com/zeptools/docoverlay/db/sqldb/impls/pgsql"
	"github.com/zeptools/docoverlay/fonts"
	"github.com/zeptools/docoverlay/overlay"
	"github.com/zeptools/docoverlay/pdfs"
	"github.com/zeptools/docoverlay/refnum"
	"github.com/zeptools/docoverlay/refnum/kvstore"
	"github.com/zeptools/docoverlay/refnum/sqlstore"
)

// Secrets read from the environment (or <appRoot>/.env) override the config files.
const (
	EnvSQLDBPassword = "DOCOVERLAY_DB_PW"
	EnvKVDBPassword  = "DOCOVERLAY_KV_PW"
)

const (
	DefaultCounterDir   = "data/counters"
	DefaultTemplatesDir = "templates/pdf"
	DefaultOutputDir    = "generated"
	DefaultSQLDB        = "main"
)

// Core - common config
type Core struct {
	AppName      string      `json:"app_name" validate:"required"`
	FontsDir     string      `json:"fonts_dir"`     // custom TrueType faces; empty = built-in Times
	TemplatesDir string      `json:"templates_dir"` // relative to AppRoot unless absolute
	OutputDir    string      `json:"output_dir"`    // relative to AppRoot unless absolute
	Counter      CounterConf `json:"counter"`

	Company        *overlay.CompanyInfo `json:"company"` // optional overrides
	Layout         *overlay.Layout      `json:"layout"`
	OfferRef       *refnum.Reference    `json:"offer_ref"`
	CertificateRef *refnum.Reference    `json:"certificate_ref"`

	// Runtime fields. Each database conf is validated when its file is loaded.
	AppRoot            string                              `json:"-" validate:"-"` // Filled from compiled paths or flags
	KVDBConf           kvdb.Conf                           `json:"-" validate:"-"` // loadKVDBConf
	BackendKVDBClient  kvdb.Client                         `json:"-" validate:"-"` // prepareKVDBClient
	SQLDBConfs         map[string]*sqldb.Conf              `json:"-" validate:"-"` // loadSQLDBConfs
	BackendSQLDBClient sqldb.Client                        `json:"-" validate:"-"` // prepareSQLDBClient
	CounterStore       refnum.Store                        `json:"-" validate:"-"` // PrepareCounterStore
	TemplateStore      *pdfs.TemplateStore[*pdfs.Template] `json:"-" validate:"-"` // PrepareTemplateStore
}

type CounterConf struct {
	Backend        string `json:"backend" validate:"required,oneof=file redis mysql pgsql"`
	Dir            string `json:"dir"`    // file backend
	SQLDB          string `json:"sql_db"` // entry of .sql-databases.json for mysql/pgsql
	OfferKey       string `json:"offer_key"`
	CertificateKey string `json:"certificate_key"`
}

var validate = validator.New()

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load <appRoot>/.env if present
// 3. load config/.core.json file over the overlay defaults
// 4. apply defaults & validate
func (c *Core) BaseInit(appRoot string) error {
	c.AppRoot = appRoot
	envPath := filepath.Join(appRoot, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err = godotenv.Load(envPath); err != nil {
			return errors.Wrapf(err, "load %s", envPath)
		}
	}
	confFilePath := filepath.Join(appRoot, "config", ".core.json")
	c.presetOverrides()
	if err := readJSON(confFilePath, c); err != nil {
		return err
	}
	c.applyDefaults()
	if err := validate.Struct(c); err != nil {
		return errors.Wrapf(err, "invalid %s", confFilePath)
	}
	log.Printf("[INFO][CORE] %s configured (counter backend: %s)", c.AppName, c.Counter.Backend)
	return nil
}

// presetOverrides points the optional overrides at the overlay defaults, so a
// partial object in .core.json only replaces the fields it names.
func (c *Core) presetOverrides() {
	if c.Company == nil {
		company := overlay.DefaultCompany()
		c.Company = &company
	}
	if c.Layout == nil {
		l := overlay.DefaultLayout()
		c.Layout = &l
	}
	if c.OfferRef == nil {
		ref := refnum.OfferReference
		c.OfferRef = &ref
	}
	if c.CertificateRef == nil {
		ref := refnum.CertificateReference
		c.CertificateRef = &ref
	}
}

func (c *Core) applyDefaults() {
	if c.Counter.Backend == "" {
		c.Counter.Backend = "file"
	}
	if c.Counter.Dir == "" {
		c.Counter.Dir = DefaultCounterDir
	}
	if c.Counter.SQLDB == "" {
		c.Counter.SQLDB = DefaultSQLDB
	}
	if c.Counter.OfferKey == "" {
		c.Counter.OfferKey = "offer_serial"
	}
	if c.Counter.CertificateKey == "" {
		c.Counter.CertificateKey = "certificate_serial"
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = DefaultTemplatesDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// Path resolves p against AppRoot unless it is absolute.
func (c *Core) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.AppRoot, p)
}

// PrepareCounterStore builds the counter store of the configured backend.
// Database backends read their connection settings from config/.kv-databases.json
// or config/.sql-databases.json.
func (c *Core) PrepareCounterStore(ctx context.Context) error {
	switch c.Counter.Backend {
	case "file":
		store, err := refnum.NewFileStore(c.Path(c.Counter.Dir))
		if err != nil {
			return err
		}
		c.CounterStore = store
	case "redis":
		if err := c.loadKVDBConf(); err != nil {
			return err
		}
		if err := c.prepareKVDBClient(); err != nil {
			return err
		}
		c.CounterStore = kvstore.New(c.BackendKVDBClient, c.KVDBConf.Prefix)
	case "mysql", "pgsql":
		if err := c.loadSQLDBConfs(); err != nil {
			return err
		}
		if err := c.prepareSQLDBClient(); err != nil {
			return err
		}
		dbConf := c.BackendSQLDBClient.GetConf()
		store, err := sqlstore.New(c.BackendSQLDBClient, dbConf.Type, dbConf.CounterTable)
		if err != nil {
			return err
		}
		if err = store.EnsureTable(ctx); err != nil {
			return errors.Wrap(err, "ensure counter table")
		}
		c.CounterStore = store
	default:
		return errors.Errorf("unsupported counter backend: %s", c.Counter.Backend)
	}
	log.Printf("[INFO][CORE] counter store ready (%s)", c.Counter.Backend)
	return nil
}

func (c *Core) loadKVDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".kv-databases.json")
	if err := readJSON(confFilePath, &c.KVDBConf); err != nil {
		return err
	}
	if pw := os.Getenv(EnvKVDBPassword); pw != "" {
		c.KVDBConf.PW = pw
	}
	if c.KVDBConf.Prefix == "" {
		c.KVDBConf.Prefix = c.AppName + ":counter:"
	}
	return errors.Wrapf(validate.Struct(&c.KVDBConf), "invalid %s", confFilePath)
}

func (c *Core) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	// case "memcached"
	default:
		return errors.New("unsupported key-value database type")
	}
	return nil
}

func (c *Core) loadSQLDBConfs() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".sql-databases.json")
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	if err := readJSON(confFilePath, &c.SQLDBConfs); err != nil {
		return err
	}
	dbConf, ok := c.SQLDBConfs[c.Counter.SQLDB]
	if !ok {
		return errors.Errorf("sql database %q not found in %s", c.Counter.SQLDB, confFilePath)
	}
	if dbConf.Type != c.Counter.Backend {
		return errors.Errorf("sql database %q is %s, counter backend is %s", c.Counter.SQLDB, dbConf.Type, c.Counter.Backend)
	}
	if pw := os.Getenv(EnvSQLDBPassword); pw != "" {
		dbConf.PW = pw
	}
	return errors.Wrapf(validate.Struct(dbConf), "invalid %s", confFilePath)
}

// prepareSQLDBClient - Build & Init the counter's SQL DB Client
// Use after loadSQLDBConfs
func (c *Core) prepareSQLDBClient() error {
	// Registering Supported Implementations
	pgsql.Register()
	mysql.Register()

	dbConf := c.SQLDBConfs[c.Counter.SQLDB]
	dbClient, err := sqldb.New(dbConf)
	if err != nil {
		return err
	}
	if err = dbClient.Init(); err != nil {
		return err
	}
	c.BackendSQLDBClient = dbClient
	return nil
}

// PrepareTemplateStore loads every PDF template under TemplatesDir.
func (c *Core) PrepareTemplateStore() error {
	store, err := pdfs.LoadTemplateDir(c.Path(c.TemplatesDir))
	if err != nil {
		return err
	}
	c.TemplateStore = store
	return nil
}

// Template returns the raw bytes of a loaded template.
func (c *Core) Template(key string) ([]byte, error) {
	if c.TemplateStore == nil {
		return nil, errors.New("template store not ready")
	}
	t, ok := c.TemplateStore.Get(key)
	if !ok {
		return nil, errors.Errorf("template %q not found in %s (available: %s)",
			key, c.Path(c.TemplatesDir), strings.Join(c.TemplateStore.Keys(), ", "))
	}
	return t.Data, nil
}

// NewRenderer assembles an overlay.Renderer from the configuration.
// Prerequisite: CounterStore
func (c *Core) NewRenderer() (*overlay.Renderer, error) {
	if c.CounterStore == nil {
		return nil, errors.New("counter store not ready")
	}
	r := overlay.NewRenderer(
		fonts.Resolve(c.Path(c.FontsDir)),
		&refnum.Generator{Store: c.CounterStore, Key: c.Counter.OfferKey},
		&refnum.Generator{Store: c.CounterStore, Key: c.Counter.CertificateKey},
	)
	if c.Company != nil {
		r.Company = *c.Company
	}
	if c.Layout != nil {
		r.Layout = *c.Layout
	}
	if c.OfferRef != nil {
		r.OfferRef = *c.OfferRef
	}
	if c.CertificateRef != nil {
		r.CertificateRef = *c.CertificateRef
	}
	return r, nil
}

// OutputPath is where a document with the given reference is written.
func (c *Core) OutputPath(reference string) string {
	return filepath.Join(c.Path(c.OutputDir), refnum.FileName(reference))
}

func (c *Core) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		if err := c.BackendKVDBClient.Close(); err != nil {
			log.Printf("[ERROR] Failed to close KV database client: %v", err)
		}
	}
	if c.BackendSQLDBClient != nil {
		dbType := c.BackendSQLDBClient.GetConf().Type
		if err := c.BackendSQLDBClient.Close(); err != nil {
			log.Printf("[ERROR][%s] Failed to close SQL DB client: %v", dbType, err)
		} else {
			log.Printf("[INFO][%s] SQL DB client closed", dbType)
		}
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path) // ([]byte, error)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(b, v), "parse %s", path)
}
